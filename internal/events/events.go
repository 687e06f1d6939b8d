// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package events

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Name identifies a kind of engine event.
type Name string

// Sync lifecycle events. Every sync_started is paired with exactly one
// sync_completed or sync_error.
const (
	SyncStarted   Name = "sync_started"
	SyncCompleted Name = "sync_completed"
	SyncError     Name = "sync_error"
)

// Offline queue events.
const (
	QueueEnqueued   Name = "queue_enqueued"
	QueueProcessing Name = "queue_processing"
	QueueSuccess    Name = "queue_success"
	QueueRetry      Name = "queue_retry"
	QueueFailed     Name = "queue_failed"
	QueueCleared    Name = "queue_cleared"
)

// Connectivity events.
const (
	NetworkChanged Name = "network_changed"
)

// Event is the canonical notification format shared by the queue, the sync
// engine, and the connectivity monitor. Fields are populated per event kind
// and marshal away under omitempty when unused.
type Event struct {
	ID        string    `json:"id"`
	Name      Name      `json:"name"`
	Timestamp time.Time `json:"timestamp"`

	// Sync lifecycle
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message,omitempty"`

	// Queue items
	ItemID     string `json:"item_id,omitempty"`
	ItemType   string `json:"item_type,omitempty"`
	RetryCount int    `json:"retry_count,omitempty"`
	Count      int    `json:"count,omitempty"`
	Error      string `json:"error,omitempty"`

	// Connectivity transitions
	Online *bool `json:"online,omitempty"`

	// Result carries the full sync result for sync_completed.
	Result json.RawMessage `json:"result,omitempty"`
}

// New creates an event with a unique ID and a UTC timestamp.
func New(name Name) Event {
	return Event{
		ID:        uuid.New().String(),
		Name:      name,
		Timestamp: time.Now().UTC(),
	}
}

// NewSyncStarted creates a sync_started event for the given stage
// ("full", "periodic", "manual", "auto").
func NewSyncStarted(stage string) Event {
	ev := New(SyncStarted)
	ev.Stage = stage
	return ev
}

// NewSyncError creates a sync_error event carrying the failure message.
func NewSyncError(message string) Event {
	ev := New(SyncError)
	ev.Message = message
	return ev
}

// NewQueueItem creates one of the per-item queue events.
func NewQueueItem(name Name, itemID, itemType string, retryCount int) Event {
	ev := New(name)
	ev.ItemID = itemID
	ev.ItemType = itemType
	ev.RetryCount = retryCount
	return ev
}

// NewNetworkChanged creates a network_changed event for a connectivity
// transition.
func NewNetworkChanged(online bool) Event {
	ev := New(NetworkChanged)
	ev.Online = &online
	return ev
}
