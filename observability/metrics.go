// Copyright (C) 2025 MedEquip Solutions (engineering@medequip-solutions.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability holds the Prometheus metric vectors shared across
// the service. Metrics are registered once at init via promauto.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "medequip"

var (
	// TurnsTotal counts processed conversation turns by intent and outcome
	// (ok, degraded, auth_required).
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Processed conversation turns by intent and status.",
		},
		[]string{"intent", "status"},
	)

	// AuthAttemptsTotal counts session authentication attempts by outcome
	// (success, invalid, logout, error).
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Session authentication attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// CollaboratorErrorsTotal counts failures by collaborator and kind
	// (unavailable, query).
	CollaboratorErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "Data collaborator failures by collaborator and error kind.",
		},
		[]string{"collaborator", "kind"},
	)

	// TurnDurationSeconds observes end-to-end turn latency by data plan.
	TurnDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "End-to-end turn processing latency by data plan.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"data_plan"},
	)
)
