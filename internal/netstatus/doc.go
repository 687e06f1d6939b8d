// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

// Package netstatus tracks device connectivity for the sync engine.
//
// The Gate interface answers one question, whether the network is
// usable right now, and lets consumers subscribe to transitions. Two
// implementations are provided:
//
//   - Monitor probes a configured HTTP endpoint on an interval,
//     measuring round-trip time and deriving a connection quality
//     bucket (excellent < 100ms, good < 300ms, fair < 600ms, else
//     poor). Any HTTP response counts as online; only transport
//     failures mean offline.
//   - Static holds a fixed status that tests flip explicitly.
//
// Offline detection is deliberately conservative: a reachable server
// returning 500 still proves the network path works, and the error
// belongs to the operation layer, not the gate.
//
// # Usage
//
//	monitor := netstatus.NewMonitor(netstatus.Config{
//		URL:      "https://api.farmily.app/v1/ping",
//		Interval: 30 * time.Second,
//		Timeout:  5 * time.Second,
//	})
//	monitor.Start(ctx)
//	defer monitor.Stop()
//
//	unsubscribe := monitor.Subscribe(func(s netstatus.Status) {
//		if s.Online {
//			// connectivity returned
//		}
//	})
//	defer unsubscribe()
package netstatus
