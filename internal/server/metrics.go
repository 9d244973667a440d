package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PageViewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "validateiq_page_views_total",
		Help: "Page views opened by the tracker",
	}, []string{"returning"})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "validateiq_events_total",
		Help: "Tracked interaction events by type",
	}, []string{"event_type"})

	BeaconsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validateiq_beacons_total",
		Help: "Page view beacons received",
	})

	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "validateiq_signups_total",
		Help: "Waitlist signup attempts by outcome",
	}, []string{"outcome"})

	SignupsRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validateiq_signups_rate_limited_total",
		Help: "Signup requests rejected by the per-IP limiter",
	})
)
