// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package services

import (
	"context"
)

// ConnectivityMonitor matches the netstatus monitor's Start/Stop
// lifecycle.
type ConnectivityMonitor interface {
	Start(ctx context.Context)
	Stop()
}

// MonitorService runs the connectivity monitor under supervision:
// Start spawns the probe loop, the service blocks until cancellation,
// and Stop waits for the loop to drain.
type MonitorService struct {
	monitor ConnectivityMonitor
}

// NewMonitorService wraps the monitor.
func NewMonitorService(monitor ConnectivityMonitor) *MonitorService {
	return &MonitorService{monitor: monitor}
}

// Serve implements suture.Service.
func (s *MonitorService) Serve(ctx context.Context) error {
	s.monitor.Start(ctx)

	<-ctx.Done()

	s.monitor.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *MonitorService) String() string {
	return "connectivity-monitor"
}
