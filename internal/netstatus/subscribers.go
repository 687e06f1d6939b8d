// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package netstatus

import (
	"sync"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
)

// subscribers is a registry of transition callbacks shared by the
// Gate implementations.
type subscribers struct {
	mu     sync.Mutex
	nextID int
	funcs  map[int]func(Status)
}

// add registers fn and returns its removal function.
func (s *subscribers) add(fn func(Status)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.funcs == nil {
		s.funcs = make(map[int]func(Status))
	}
	id := s.nextID
	s.nextID++
	s.funcs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.funcs, id)
	}
}

// notify invokes every subscriber with status. Callbacks run outside
// the registry lock so they may subscribe or unsubscribe themselves,
// and a panicking subscriber never takes down the monitor or its
// sibling subscribers.
func (s *subscribers) notify(status Status) {
	s.mu.Lock()
	funcs := make([]func(Status), 0, len(s.funcs))
	for _, fn := range s.funcs {
		funcs = append(funcs, fn)
	}
	s.mu.Unlock()

	for _, fn := range funcs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Error().
						Interface("panic", r).
						Msg("Connectivity subscriber panicked")
				}
			}()
			fn(status)
		}()
	}
}
