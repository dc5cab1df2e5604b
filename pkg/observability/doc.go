/*
Package observability turns engine lifecycle hooks into logs and Prometheus
metrics.

Hooks observe queries; they never change a verdict. Several hook sets can be
combined with Chain.
*/
package observability
