// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/metrics"
)

// Topic is the single bus topic all engine events travel on.
const Topic = "farmily.events"

// DefaultBufferSize is the per-subscriber output channel buffer.
const DefaultBufferSize = 64

// BusConfig controls bus buffering.
type BusConfig struct {
	// BufferSize is the per-subscriber output channel buffer.
	// Zero or negative selects DefaultBufferSize.
	BufferSize int
}

// Bus carries events across goroutine boundaries on an in-process watermill
// gochannel Pub/Sub. Publishing on a closed bus returns ErrBusClosed rather
// than panicking. Subscribers must drain their channel or cancel their
// context; an abandoned subscriber eventually stalls delivery to itself
// only, not to other subscribers.
type Bus struct {
	pubsub *gochannel.GoChannel

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus backed by a gochannel Pub/Sub.
func NewBus(cfg BusConfig) *Bus {
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}

	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: int64(buffer)},
			newWatermillLogger(),
		),
	}
}

// Publish serializes ev and delivers it to every active subscriber.
// Publishing with no subscribers succeeds and discards the event.
func (b *Bus) Publish(ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Name, err)
	}

	msg := message.NewMessage(ev.ID, data)
	msg.Metadata.Set("name", string(ev.Name))

	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", ev.Name, err)
	}

	metrics.RecordEventPublished(string(ev.Name))
	return nil
}

// Subscribe returns a channel of decoded events. The channel closes when
// ctx is canceled or the bus is closed. Undecodable payloads are acked and
// dropped with a warning so one bad message cannot wedge the stream.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, error) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil, ErrBusClosed
	}
	messages, err := b.pubsub.Subscribe(ctx, Topic)
	b.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", Topic, err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for msg := range messages {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				logging.Warn().
					Err(err).
					Str("message_id", msg.UUID).
					Msg("Dropping undecodable event")
				metrics.RecordEventDropped()
				msg.Ack()
				continue
			}
			// Ack before handing off: delivery to this subscriber is
			// at-most-once and must not block the sender on a consumer
			// that has gone away.
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				metrics.RecordEventDropped()
				return
			}
		}
	}()

	return out, nil
}

// Close shuts the bus down and closes all subscriber channels. Safe to call
// more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if err := b.pubsub.Close(); err != nil {
		return fmt.Errorf("close event bus: %w", err)
	}
	return nil
}

// watermillLogger bridges watermill's internal logging to the global
// zerolog logger. The gochannel Pub/Sub logs every delivery at info, so
// info is mapped down to debug.
type watermillLogger struct {
	fields watermill.LogFields
}

func newWatermillLogger() watermill.LoggerAdapter {
	return watermillLogger{}
}

func (l watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.apply(logging.Error(), fields).Err(err).Msg(msg)
}

func (l watermillLogger) Info(msg string, fields watermill.LogFields) {
	l.apply(logging.Debug(), fields).Msg(msg)
}

func (l watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.apply(logging.Debug(), fields).Msg(msg)
}

func (l watermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.apply(logging.Trace(), fields).Msg(msg)
}

func (l watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogger{fields: l.fields.Add(fields)}
}

func (l watermillLogger) apply(ev *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range l.fields {
		ev = ev.Interface(k, v)
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	return ev
}

// Errors
var (
	// ErrBusClosed is returned when publishing or subscribing on a closed bus.
	ErrBusClosed = fmt.Errorf("event bus is closed")
)
