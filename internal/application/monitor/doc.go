// Package monitor tracks the health of the service's dependencies.
//
// The health monitor periodically pings the database pool and:
//   - Records pool statistics and availability as metrics
//   - Logs warnings when the database is unreachable or the pool is saturated
//   - Notifies subscribers when the health state changes
//
// The HTTP /health endpoint and the gRPC health service both read from it.
package monitor
