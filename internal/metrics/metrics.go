package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Resolutions counts resolution attempts by terminal outcome:
	// redirect, render, not_found, inactive, expired, limit, error.
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanlink_resolutions_total",
			Help: "Total number of resolution attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// Scans counts successfully accounted visits by code kind.
	Scans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanlink_scans_total",
			Help: "Total number of counted scans by code kind.",
		},
		[]string{"kind"},
	)

	// CodesByStatus gauges the short code population, refreshed by the stats
	// job.
	CodesByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scanlink_codes",
			Help: "Current number of short codes by status.",
		},
		[]string{"status"},
	)

	// Accounts gauges the provisioned account population, refreshed by the
	// stats job.
	Accounts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scanlink_accounts",
			Help: "Current number of provisioned accounts.",
		},
	)
)

func init() {
	prometheus.MustRegister(Resolutions, Scans, CodesByStatus, Accounts)
}
