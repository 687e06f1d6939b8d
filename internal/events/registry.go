// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package events

import (
	"sort"
	"sync"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
)

// Registry fans events out to subscribed listeners. Dispatch is synchronous
// and follows registration order; a panicking listener is recovered and
// logged without disturbing the others.
type Registry struct {
	mu     sync.Mutex
	nextID int
	funcs  map[int]func(Event)
}

// NewRegistry creates an empty listener registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns its removal function. The removal
// function is safe to call more than once.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.funcs[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.funcs, id)
	}
}

// Notify dispatches ev to every listener in registration order. Listeners
// run outside the registry lock, so they may subscribe or unsubscribe from
// inside the callback without deadlocking.
func (r *Registry) Notify(ev Event) {
	r.mu.Lock()
	ids := make([]int, 0, len(r.funcs))
	for id := range r.funcs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	funcs := make([]func(Event), len(ids))
	for i, id := range ids {
		funcs[i] = r.funcs[id]
	}
	r.mu.Unlock()

	for _, fn := range funcs {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logging.Error().
						Interface("panic", rec).
						Str("event", string(ev.Name)).
						Msg("Event listener panicked")
				}
			}()
			fn(ev)
		}()
	}
}

// Len reports the number of registered listeners.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.funcs)
}
