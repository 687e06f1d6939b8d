// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package services

import (
	"context"
	"fmt"
)

// EventBridge matches the bus-to-hub subscriber's lifecycle.
type EventBridge interface {
	Start(ctx context.Context) error
	Stop()
}

// BridgeService runs the event bridge under supervision. A failed
// Start propagates so the supervisor retries the subscription with
// backoff instead of silently dropping the dashboard event stream.
type BridgeService struct {
	bridge EventBridge
}

// NewBridgeService wraps the bridge.
func NewBridgeService(bridge EventBridge) *BridgeService {
	return &BridgeService{bridge: bridge}
}

// Serve implements suture.Service.
func (s *BridgeService) Serve(ctx context.Context) error {
	if err := s.bridge.Start(ctx); err != nil {
		return fmt.Errorf("event bridge start failed: %w", err)
	}

	<-ctx.Done()

	s.bridge.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *BridgeService) String() string {
	return "event-bridge"
}
