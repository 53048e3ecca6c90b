// Package middleware wraps the player API with an access log and Prometheus
// request metrics.
//
// Logger sits outside the router and writes one logrus entry per request,
// tagged log=access. Metrics is installed with Router.Use so requests are
// labeled by their route template rather than the raw path.
package middleware
