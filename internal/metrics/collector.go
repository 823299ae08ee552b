// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"sync"
	"time"
)

// MetricsCollector accumulates in-process counters and timing samples for
// a single verification flow runner, independent of the Prometheus series
// defined elsewhere in this package. It is cheaper to query from inside a
// hot path and is used for the CLI's human-readable status output.
type MetricsCollector struct {
	mu sync.RWMutex

	// Counters
	TransitionCount     int64
	CommitmentChecks    int64
	CommitmentMatches   int64
	CommitmentMismatches int64
	MacValidations      int64
	MacValid            int64
	MacInvalid          int64
	StoreLookups        int64
	StoreHits           int64
	StoreMisses         int64
	TransportSends      int64
	TransportErrors     int64

	// Timing metrics (in microseconds)
	TransitionTimes      []int64
	CommitmentCheckTimes []int64
	MacValidationTimes   []int64
	StoreLookupTimes     []int64

	// Start time for uptime calculation
	startTime time.Time

	// Configuration
	maxTimingSamples int
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		startTime:        time.Now(),
		maxTimingSamples: 1000, // Keep last 1000 samples for each timing metric
	}
}

// RecordTransition records a state transition.
func (mc *MetricsCollector) RecordTransition(duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.TransitionCount++
	mc.recordTiming(&mc.TransitionTimes, duration)
}

// RecordCommitmentCheck records a commitment verification.
func (mc *MetricsCollector) RecordCommitmentCheck(matched bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.CommitmentChecks++
	if matched {
		mc.CommitmentMatches++
	} else {
		mc.CommitmentMismatches++
	}
	mc.recordTiming(&mc.CommitmentCheckTimes, duration)
}

// RecordMacValidation records a MAC validation.
func (mc *MetricsCollector) RecordMacValidation(valid bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.MacValidations++
	if valid {
		mc.MacValid++
	} else {
		mc.MacInvalid++
	}
	mc.recordTiming(&mc.MacValidationTimes, duration)
}

// RecordStoreLookup records a lookup against the verified-key store.
func (mc *MetricsCollector) RecordStoreLookup(hit bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.StoreLookups++
	if hit {
		mc.StoreHits++
	} else {
		mc.StoreMisses++
	}
	mc.recordTiming(&mc.StoreLookupTimes, duration)
}

// RecordTransportSend records an outbound to-device send.
func (mc *MetricsCollector) RecordTransportSend(success bool, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.TransportSends++
	if !success {
		mc.TransportErrors++
	}
}

// recordTiming records a timing sample.
func (mc *MetricsCollector) recordTiming(timings *[]int64, duration time.Duration) {
	microseconds := duration.Microseconds()
	*timings = append(*timings, microseconds)

	// Keep only last N samples
	if len(*timings) > mc.maxTimingSamples {
		*timings = (*timings)[len(*timings)-mc.maxTimingSamples:]
	}
}

// GetSnapshot returns a snapshot of current metrics.
func (mc *MetricsCollector) GetSnapshot() *MetricsSnapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return &MetricsSnapshot{
		Timestamp:             time.Now(),
		Uptime:                time.Since(mc.startTime),
		TransitionCount:       mc.TransitionCount,
		CommitmentChecks:      mc.CommitmentChecks,
		CommitmentMatches:     mc.CommitmentMatches,
		CommitmentMismatches:  mc.CommitmentMismatches,
		MacValidations:        mc.MacValidations,
		MacValid:              mc.MacValid,
		MacInvalid:            mc.MacInvalid,
		StoreLookups:          mc.StoreLookups,
		StoreHits:             mc.StoreHits,
		StoreMisses:           mc.StoreMisses,
		TransportSends:        mc.TransportSends,
		TransportErrors:       mc.TransportErrors,
		AvgTransitionTime:     calculateAverage(mc.TransitionTimes),
		AvgCommitmentTime:     calculateAverage(mc.CommitmentCheckTimes),
		AvgMacValidationTime:  calculateAverage(mc.MacValidationTimes),
		AvgStoreLookupTime:    calculateAverage(mc.StoreLookupTimes),
		P95TransitionTime:     calculatePercentile(mc.TransitionTimes, 95),
		P95CommitmentTime:     calculatePercentile(mc.CommitmentCheckTimes, 95),
		P95MacValidationTime:  calculatePercentile(mc.MacValidationTimes, 95),
		P95StoreLookupTime:    calculatePercentile(mc.StoreLookupTimes, 95),
	}
}

// Reset resets all metrics.
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.TransitionCount = 0
	mc.CommitmentChecks = 0
	mc.CommitmentMatches = 0
	mc.CommitmentMismatches = 0
	mc.MacValidations = 0
	mc.MacValid = 0
	mc.MacInvalid = 0
	mc.StoreLookups = 0
	mc.StoreHits = 0
	mc.StoreMisses = 0
	mc.TransportSends = 0
	mc.TransportErrors = 0

	mc.TransitionTimes = nil
	mc.CommitmentCheckTimes = nil
	mc.MacValidationTimes = nil
	mc.StoreLookupTimes = nil

	mc.startTime = time.Now()
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	Timestamp time.Time
	Uptime    time.Duration

	// Counters
	TransitionCount      int64
	CommitmentChecks     int64
	CommitmentMatches    int64
	CommitmentMismatches int64
	MacValidations       int64
	MacValid             int64
	MacInvalid           int64
	StoreLookups         int64
	StoreHits            int64
	StoreMisses          int64
	TransportSends       int64
	TransportErrors      int64

	// Timing averages (microseconds)
	AvgTransitionTime    float64
	AvgCommitmentTime    float64
	AvgMacValidationTime float64
	AvgStoreLookupTime   float64

	// 95th percentile timings (microseconds)
	P95TransitionTime    int64
	P95CommitmentTime    int64
	P95MacValidationTime int64
	P95StoreLookupTime   int64
}

// GetStoreHitRate returns the verified-key store hit rate as a percentage.
func (ms *MetricsSnapshot) GetStoreHitRate() float64 {
	total := ms.StoreHits + ms.StoreMisses
	if total == 0 {
		return 0
	}
	return float64(ms.StoreHits) / float64(total) * 100
}

// GetMacValidRate returns the percentage (0-100) of MAC validations that
// succeeded.
func (ms *MetricsSnapshot) GetMacValidRate() float64 {
	if ms.MacValidations == 0 {
		return 0
	}
	return float64(ms.MacValid) / float64(ms.MacValidations) * 100
}

// GetTransportErrorRate returns the percentage (0-100) of transport sends
// that failed.
func (ms *MetricsSnapshot) GetTransportErrorRate() float64 {
	if ms.TransportSends == 0 {
		return 0
	}
	return float64(ms.TransportErrors) / float64(ms.TransportSends) * 100
}

// Helper functions

func calculateAverage(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

func calculatePercentile(values []int64, percentile int) int64 {
	if len(values) == 0 {
		return 0
	}

	// Simple implementation - for production, use a proper percentile algorithm
	// This is an approximation
	index := len(values) * percentile / 100
	if index >= len(values) {
		index = len(values) - 1
	}

	// Create a copy and sort (simple bubble sort for small datasets)
	sorted := make([]int64, len(values))
	copy(sorted, values)

	for i := 0; i < len(sorted)-1; i++ {
		for j := 0; j < len(sorted)-i-1; j++ {
			if sorted[j] > sorted[j+1] {
				sorted[j], sorted[j+1] = sorted[j+1], sorted[j]
			}
		}
	}

	return sorted[index]
}

// Global metrics collector instance
var globalCollector = NewMetricsCollector()

// GetGlobalCollector returns the global metrics collector.
func GetGlobalCollector() *MetricsCollector {
	return globalCollector
}
