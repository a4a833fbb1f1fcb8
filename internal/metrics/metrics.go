// Package metrics exposes poll-health gauges for Prometheus scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ConnectionFailure is 1 when the last poll cycle failed to reach the
	// controller, 0 after a successful cycle.
	ConnectionFailure = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uponor_connection_failure",
		Help: "1 if the last poll cycle failed, 0 if it succeeded",
	})

	// LastRefreshTimestamp is the Unix time of the last successful update.
	LastRefreshTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uponor_last_refresh_timestamp_seconds",
		Help: "Unix timestamp of the last fully successful data refresh",
	})

	// ThermostatCount is the number of thermostats discovered so far.
	ThermostatCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "uponor_thermostat_count",
		Help: "Number of thermostats observed since process start",
	})
)

// MustRegister installs the gauges on the default registry. Call once from
// main before the HTTP server starts serving /metrics.
func MustRegister() {
	prometheus.MustRegister(ConnectionFailure, LastRefreshTimestamp, ThermostatCount)
}
