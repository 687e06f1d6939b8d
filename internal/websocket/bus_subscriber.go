// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package websocket

import (
	"context"
	"sync"

	"github.com/neville-gpp/farmily-up-sub000/internal/events"
	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
)

// EventSource defines the interface for receiving engine events.
// This allows the WebSocket subscriber to work with any event feed;
// in production it is the engine's event bus.
type EventSource interface {
	// Subscribe subscribes to engine events and returns a channel that
	// closes when the source shuts down.
	Subscribe(ctx context.Context) (<-chan events.Event, error)
}

// BusSubscriber bridges the engine event bus to WebSocket broadcasts.
// Every sync, queue, and connectivity event published on the bus is
// forwarded to all connected dashboard clients.
type BusSubscriber struct {
	hub     *Hub
	source  EventSource
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewBusSubscriber creates a new bus to WebSocket bridge.
func NewBusSubscriber(hub *Hub, source EventSource) *BusSubscriber {
	return &BusSubscriber{
		hub:    hub,
		source: source,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins listening for engine events and forwarding to WebSocket.
func (s *BusSubscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	eventCh, err := s.source.Subscribe(ctx)
	if err != nil {
		// Roll back so a later Stop does not wait on a loop that
		// never started.
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	}

	go s.processEvents(ctx, eventCh)

	logging.Info().Msg("event bus to WebSocket subscriber started")
	return nil
}

// Stop stops the subscriber and waits for the forwarding loop to drain.
func (s *BusSubscriber) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh
	logging.Info().Msg("event bus to WebSocket subscriber stopped")
}

// processEvents forwards bus events to the hub until the source closes
// or the subscriber stops.
func (s *BusSubscriber) processEvents(ctx context.Context, eventCh <-chan events.Event) {
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case ev, ok := <-eventCh:
			if !ok {
				logging.Debug().Msg("event source closed, stopping WebSocket bridge")
				return
			}
			s.hub.BroadcastEvent(ev)
		}
	}
}
