// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package netstatus

import (
	"sync"
	"time"
)

// Static is a Gate with an explicitly controlled status. Tests use it
// to simulate going offline and coming back without a real network.
type Static struct {
	mu     sync.RWMutex
	status Status
	subs   subscribers
}

// Compile-time interface check.
var _ Gate = (*Static)(nil)

// NewStatic creates a gate pinned to the given connectivity.
func NewStatic(online bool) *Static {
	quality := QualityUnknown
	if online {
		quality = QualityGood
	}
	return &Static{status: Status{
		Online:    online,
		Quality:   quality,
		CheckedAt: time.Now(),
	}}
}

// IsOnline reports the pinned connectivity.
func (s *Static) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Online
}

// Status returns the pinned status.
func (s *Static) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Subscribe registers fn to run on transitions triggered by SetOnline.
func (s *Static) Subscribe(fn func(Status)) func() {
	return s.subs.add(fn)
}

// SetOnline flips connectivity, notifying subscribers on transition.
func (s *Static) SetOnline(online bool) {
	s.mu.Lock()
	changed := s.status.Online != online
	s.status.Online = online
	s.status.CheckedAt = time.Now()
	if online {
		s.status.Quality = QualityGood
		s.status.LastError = ""
	} else {
		s.status.Quality = QualityUnknown
		s.status.LastError = "forced offline"
	}
	status := s.status
	s.mu.Unlock()

	if changed {
		s.subs.notify(status)
	}
}

// SetStatus replaces the whole status, notifying subscribers when the
// online flag flipped. Tests use it to simulate degraded quality.
func (s *Static) SetStatus(status Status) {
	s.mu.Lock()
	changed := s.status.Online != status.Online
	s.status = status
	s.mu.Unlock()

	if changed {
		s.subs.notify(status)
	}
}
