// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package websocket

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/neville-gpp/farmily-up-sub000/internal/events"
)

// mockEventSource implements EventSource for testing.
type mockEventSource struct {
	mu           sync.Mutex
	events       chan events.Event
	closed       bool
	subscribeErr error
}

func newMockEventSource() *mockEventSource {
	return &mockEventSource{
		events: make(chan events.Event, 100),
	}
}

func (m *mockEventSource) Subscribe(_ context.Context) (<-chan events.Event, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}
	return m.events, nil
}

func (m *mockEventSource) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
}

func (m *mockEventSource) Send(ev events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.events <- ev
	}
}

// TestBusSubscriber_New verifies subscriber creation.
func TestBusSubscriber_New(t *testing.T) {
	hub := NewHub()
	source := newMockEventSource()

	sub := NewBusSubscriber(hub, source)
	if sub == nil {
		t.Fatal("NewBusSubscriber returned nil")
	}
	if sub.hub != hub {
		t.Error("hub not set correctly")
	}
	if sub.source != source {
		t.Error("source not set correctly")
	}
}

// TestBusSubscriber_Start verifies subscriber starts correctly.
func TestBusSubscriber_Start(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	source := newMockEventSource()
	sub := NewBusSubscriber(hub, source)

	ctx := context.Background()
	if err := sub.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Verify running state
	sub.mu.Lock()
	running := sub.running
	sub.mu.Unlock()

	if !running {
		t.Error("subscriber should be running")
	}

	sub.Stop()
	source.Close()
}

// TestBusSubscriber_Start_Idempotent verifies multiple Start calls are safe.
func TestBusSubscriber_Start_Idempotent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	source := newMockEventSource()
	sub := NewBusSubscriber(hub, source)

	ctx := context.Background()

	// Start multiple times should not error
	for i := 0; i < 3; i++ {
		if err := sub.Start(ctx); err != nil {
			t.Errorf("Start() call %d error = %v", i+1, err)
		}
	}

	sub.Stop()
	source.Close()
}

// TestBusSubscriber_StartSubscribeError verifies a failed subscribe rolls
// back the running state so Stop stays safe.
func TestBusSubscriber_StartSubscribeError(t *testing.T) {
	hub := NewHub()

	source := newMockEventSource()
	source.subscribeErr = fmt.Errorf("bus is closed")
	sub := NewBusSubscriber(hub, source)

	if err := sub.Start(context.Background()); err == nil {
		t.Fatal("Start() should have returned the subscribe error")
	}

	sub.mu.Lock()
	running := sub.running
	sub.mu.Unlock()

	if running {
		t.Error("subscriber should not be running after a failed Start")
	}

	// Stop on a never-started subscriber must not block
	done := make(chan struct{})
	go func() {
		sub.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Stop() blocked after failed Start")
	}
}

// TestBusSubscriber_ForwardsEvents verifies bus events reach connected clients.
func TestBusSubscriber_ForwardsEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Create a test client to receive broadcasts
	client := &Client{
		hub:  hub,
		send: make(chan Message, 10),
	}
	hub.Register <- client

	// Wait for registration (100ms for CI reliability under load)
	time.Sleep(100 * time.Millisecond)

	source := newMockEventSource()
	sub := NewBusSubscriber(hub, source)

	ctx := context.Background()
	if err := sub.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	source.Send(events.NewSyncStarted("periodic"))

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	select {
	case msg := <-client.send:
		if msg.Type != string(events.SyncStarted) {
			t.Errorf("Message type = %s, want %s", msg.Type, events.SyncStarted)
		}
		ev, ok := msg.Data.(events.Event)
		if !ok {
			t.Fatalf("Message data = %T, want events.Event", msg.Data)
		}
		if ev.Stage != "periodic" {
			t.Errorf("Stage = %s, want periodic", ev.Stage)
		}
	default:
		t.Error("Client did not receive broadcast")
	}

	sub.Stop()
	source.Close()
}

// TestBusSubscriber_SourceClosed verifies the loop drains when the source
// channel closes.
func TestBusSubscriber_SourceClosed(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	source := newMockEventSource()
	sub := NewBusSubscriber(hub, source)

	ctx := context.Background()
	if err := sub.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	source.Close()

	// The forwarding loop should exit, making Stop return immediately
	done := make(chan struct{})
	go func() {
		sub.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Stop() blocked after source closed")
	}
}

// TestBusSubscriber_Stop verifies clean shutdown.
func TestBusSubscriber_Stop(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	source := newMockEventSource()
	sub := NewBusSubscriber(hub, source)

	ctx := context.Background()
	if err := sub.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Stop should complete without blocking
	done := make(chan struct{})
	go func() {
		sub.Stop()
		close(done)
	}()

	select {
	case <-done:
		// Good
	case <-time.After(time.Second):
		t.Error("Stop() blocked for too long")
	}

	// Verify stopped state
	sub.mu.Lock()
	running := sub.running
	sub.mu.Unlock()

	if running {
		t.Error("subscriber should not be running after Stop")
	}

	source.Close()
}

// TestBusSubscriber_Stop_Idempotent verifies multiple Stop calls are safe.
func TestBusSubscriber_Stop_Idempotent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	source := newMockEventSource()
	sub := NewBusSubscriber(hub, source)

	ctx := context.Background()
	if err := sub.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Multiple Stop calls should not panic
	for i := 0; i < 3; i++ {
		sub.Stop()
	}

	source.Close()
}
