// Farmily Up - Offline-Aware Family Data Sync Engine
// Copyright 2026 Neville G. (neville-gpp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/neville-gpp/farmily-up-sub000

package netstatus

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/neville-gpp/farmily-up-sub000/internal/logging"
	"github.com/neville-gpp/farmily-up-sub000/internal/metrics"
)

// Defaults for the probe loop.
const (
	DefaultInterval = 30 * time.Second
	DefaultTimeout  = 5 * time.Second
	DefaultBurst    = 5
)

// manualProbeRate limits on-demand probes (CheckNow) to one per
// second sustained, with bursts allowed up to Config.Burst.
var manualProbeRate = rate.Every(1 * time.Second)

// Config configures the connectivity monitor.
type Config struct {
	// URL is the endpoint probed to measure connectivity. When
	// empty, the monitor assumes the network is up and never probes;
	// consumers then only go offline via ForceOffline.
	URL string

	// Interval is how often the background loop probes.
	Interval time.Duration

	// Timeout is the per-probe HTTP timeout. A probe that exceeds it
	// counts as offline.
	Timeout time.Duration

	// Burst is how many on-demand probes may run back to back before
	// rate limiting returns the cached status instead.
	Burst int

	// ForceOffline pins the monitor offline regardless of probes.
	// Used for airplane-mode style testing.
	ForceOffline bool
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	return c
}

// Monitor probes an HTTP endpoint on an interval and tracks the
// resulting connectivity status. It implements Gate.
type Monitor struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
	subs    subscribers

	mu     sync.RWMutex
	status Status

	stopChan  chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	wg        sync.WaitGroup
}

// Compile-time interface check.
var _ Gate = (*Monitor)(nil)

// NewMonitor creates a connectivity monitor. Until the first probe
// completes the monitor reports online with unknown quality, so a
// freshly started engine does not spuriously queue operations.
func NewMonitor(cfg Config) *Monitor {
	cfg = cfg.withDefaults()
	return &Monitor{
		config:   cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(manualProbeRate, cfg.Burst),
		status:   Status{Online: !cfg.ForceOffline, Quality: QualityUnknown},
		stopChan: make(chan struct{}),
	}
}

// Start launches the background probe loop. It returns immediately;
// the first probe runs asynchronously. Start is idempotent.
func (m *Monitor) Start(ctx context.Context) {
	if m.config.URL == "" {
		logging.Info().Msg("Connectivity probing disabled, assuming online")
		metrics.SetNetworkOnline(m.IsOnline())
		return
	}

	m.startOnce.Do(func() {
		logging.Info().
			Str("url", m.config.URL).
			Dur("interval", m.config.Interval).
			Msg("Starting connectivity monitor")

		m.wg.Add(1)
		go m.probeLoop(ctx)
	})
}

// Stop halts the probe loop. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.wg.Wait()
}

// probeLoop probes immediately, then on every tick.
func (m *Monitor) probeLoop(ctx context.Context) {
	defer m.wg.Done()

	m.probe(ctx)

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

// IsOnline reports current connectivity.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online && !m.config.ForceOffline
}

// Status returns a snapshot of the current connectivity status.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := m.status
	if m.config.ForceOffline {
		status.Online = false
		status.Quality = QualityUnknown
	}
	return status
}

// Subscribe registers fn to run on every online/offline transition.
func (m *Monitor) Subscribe(fn func(Status)) func() {
	return m.subs.add(fn)
}

// CheckNow probes immediately and returns the fresh status. Probes are
// rate limited; when the limiter rejects, the cached status is
// returned instead of generating more traffic.
func (m *Monitor) CheckNow(ctx context.Context) Status {
	if m.config.URL == "" || m.config.ForceOffline {
		return m.Status()
	}
	if !m.limiter.Allow() {
		logging.Debug().Msg("Connectivity check rate limited, returning cached status")
		return m.Status()
	}

	m.probe(ctx)
	return m.Status()
}

// probe performs one HTTP round trip and updates the status.
//
// Any HTTP response proves the network path works, whatever the
// status code; only transport errors count as offline.
func (m *Monitor) probe(ctx context.Context) {
	start := time.Now()
	online, probeErr := m.doRequest(ctx)
	rtt := time.Since(start)

	status := Status{
		Online:    online,
		Quality:   QualityUnknown,
		CheckedAt: time.Now(),
	}
	if online {
		status.Quality = QualityForRTT(rtt)
		status.RTTMillis = rtt.Milliseconds()
	} else if probeErr != nil {
		status.LastError = probeErr.Error()
	}

	metrics.RecordProbe(online, rtt)

	m.mu.Lock()
	previous := m.status
	m.status = status
	forced := m.config.ForceOffline
	m.mu.Unlock()

	if forced {
		return
	}

	metrics.SetNetworkOnline(online)

	if previous.Online != online {
		logging.Info().
			Bool("online", online).
			Str("quality", string(status.Quality)).
			Int64("rtt_ms", status.RTTMillis).
			Str("error", status.LastError).
			Msg("Connectivity changed")
		metrics.RecordNetworkTransition(online)
		m.subs.notify(status)
	}
}

// doRequest issues the probe request.
func (m *Monitor) doRequest(ctx context.Context) (bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, m.config.URL, http.NoBody)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", "FarmilyUp-Sync/1.0")

	resp, err := m.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return true, nil
}
