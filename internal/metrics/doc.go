// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Poll cycle count, duration and recovered panics
//   - Upstream price/order failures by source
//   - Buys detected and notifications sent per pair
//   - Seen-set size and evictions
//   - Archive writer throughput and drops
//   - Live feed client count
//
// All methods are safe to call on a nil *Metrics.
package metrics
