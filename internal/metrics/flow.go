// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FlowsStarted tracks verification flows started, by the local role.
	FlowsStarted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flows",
			Name:      "started_total",
			Help:      "Total number of SAS verification flows started",
		},
		[]string{"role"}, // initiator, responder
	)

	// FlowsCompleted tracks flows that reached a terminal state.
	FlowsCompleted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flows",
			Name:      "completed_total",
			Help:      "Total number of SAS verification flows reaching Done",
		},
		[]string{"role"},
	)

	// FlowsCancelled tracks flows cancelled, by cancel code.
	FlowsCancelled = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "flows",
			Name:      "cancelled_total",
			Help:      "Total number of SAS verification flows cancelled, by reason code",
		},
		[]string{"code"}, // user, timeout, mismatch, unknown_method, ...
	)

	// StateTransitionDuration tracks time spent in each state before leaving it.
	StateTransitionDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "flows",
			Name:      "state_duration_seconds",
			Help:      "Time spent in a verification state before the next transition",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to 32s
		},
		[]string{"state"},
	)
)
