// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package netstatus

import "time"

// Quality buckets a connection's round-trip time.
type Quality string

const (
	// QualityExcellent means RTT under 100ms.
	QualityExcellent Quality = "excellent"
	// QualityGood means RTT under 300ms.
	QualityGood Quality = "good"
	// QualityFair means RTT under 600ms.
	QualityFair Quality = "fair"
	// QualityPoor means RTT of 600ms or more.
	QualityPoor Quality = "poor"
	// QualityUnknown means no successful probe yet, or offline.
	QualityUnknown Quality = "unknown"
)

// RTT thresholds for quality buckets.
const (
	excellentRTT = 100 * time.Millisecond
	goodRTT      = 300 * time.Millisecond
	fairRTT      = 600 * time.Millisecond
)

// QualityForRTT buckets a measured round-trip time.
func QualityForRTT(rtt time.Duration) Quality {
	switch {
	case rtt < excellentRTT:
		return QualityExcellent
	case rtt < goodRTT:
		return QualityGood
	case rtt < fairRTT:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Status is a point-in-time snapshot of device connectivity.
type Status struct {
	// Online reports whether the last probe reached the endpoint.
	Online bool `json:"online"`

	// Quality buckets the last measured round-trip time.
	// QualityUnknown while offline or before the first probe.
	Quality Quality `json:"quality"`

	// RTTMillis is the last measured round-trip time in
	// milliseconds. Zero while offline or before the first probe.
	RTTMillis int64 `json:"rtt_ms"`

	// CheckedAt is when the last probe completed. Zero before the
	// first probe.
	CheckedAt time.Time `json:"checked_at"`

	// LastError describes the last probe failure. Empty while online.
	LastError string `json:"last_error,omitempty"`
}

// Gate answers whether the network is usable and notifies on change.
//
// Implementations must be safe for concurrent use. Subscribe callbacks
// fire on every online/offline transition; the returned function
// removes the subscription and is safe to call more than once.
type Gate interface {
	IsOnline() bool
	Status() Status
	Subscribe(fn func(Status)) (unsubscribe func())
}
