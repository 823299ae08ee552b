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
	// ContentsProcessed tracks to-device verification events handled by the transport.
	ContentsProcessed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "contents_processed_total",
			Help:      "Total number of to-device verification events processed",
		},
		[]string{"type", "status"}, // m.key.verification.start/accept/key/mac/done/cancel, success/failure
	)

	// ReplayAttacksDetected tracks duplicate transaction IDs rejected by the flow registry.
	ReplayAttacksDetected = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "replay_attacks_detected_total",
			Help:      "Total number of events rejected for reusing a known flow or transaction ID",
		},
	)

	// StaleEventsDropped tracks events rejected for falling outside the acceptable age window.
	StaleEventsDropped = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "stale_events_dropped_total",
			Help:      "Total number of verification events dropped for timestamp staleness",
		},
		[]string{"reason"}, // too_old, too_new
	)

	// ContentProcessingDuration tracks how long event handling takes end to end.
	ContentProcessingDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "processing_duration_seconds",
			Help:      "Verification event processing duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to 204.8ms
		},
	)

	// ContentSize tracks the serialized size of to-device content, both sent
	// (client) and received (server).
	ContentSize = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "content_size_bytes",
			Help:      "Size of serialized to-device verification content",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8), // 64B to 1MB
		},
	)
)
