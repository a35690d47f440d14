// Package http provides the HTTP API server.
//
// The server is built from the validated configuration views and exposes:
//   - Health checks backed by the database health monitor
//   - Prometheus metrics
//   - The versioned API (service info, the authenticated subject, session cookies)
//
// Every request passes through recovery, request ID, logging and metrics,
// security headers, CORS and rate limiting, in that order.
package http
