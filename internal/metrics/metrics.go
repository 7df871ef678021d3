package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Solver metrics
	StepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nbody_steps_total",
			Help: "Total number of integration steps executed",
		},
	)

	StepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nbody_step_duration_seconds",
			Help:    "Duration of a full kick-drift-kick step in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	TreeBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nbody_tree_build_duration_seconds",
			Help:    "Duration of force-engine construction in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		},
		[]string{"engine"},
	)

	ForceEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbody_force_evaluations_total",
			Help: "Total number of per-body force queries",
		},
		[]string{"engine"},
	)

	CollisionsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nbody_collisions_resolved_total",
			Help: "Total number of pairwise collisions resolved",
		},
	)

	BodiesSimulated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nbody_bodies",
			Help: "Number of bodies in the current simulation",
		},
	)

	TotalEnergy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nbody_total_energy",
			Help: "Total energy at the last tracked step",
		},
	)

	OutOfUniverseBodies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nbody_out_of_universe_bodies",
			Help: "Bodies excluded from the force engine because they left the universe",
		},
	)

	// Viewer metrics
	ViewerClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nbody_viewer_clients",
			Help: "Connected WebSocket viewer clients",
		},
	)

	ViewerFramesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nbody_viewer_frames_sent_total",
			Help: "Frames broadcast to viewer clients",
		},
	)

	ViewerFrameCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbody_viewer_frame_cache_total",
			Help: "Frame cache lookups by outcome",
		},
		[]string{"outcome"}, // outcome: hit, miss
	)
)
