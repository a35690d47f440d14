// Package ratelimit defines the fixed-window rate limiter used by the API.
//
// Implementations:
//   - memory: per-process counters, for single-instance deployments
//   - redis: counters shared by every instance through Redis
package ratelimit
