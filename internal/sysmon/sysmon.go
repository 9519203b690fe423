// Package sysmon samples device state (battery, memory, connectivity) with
// rate-limited probes. Snapshots are explicit state (cached value + last
// checked timestamp) so probe behavior is testable on its own, and a probe in
// flight is shared by concurrent callers instead of re-triggered per request.
package sysmon

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"hybridd/pkg/types"
)

const (
	// DefaultConnectivityTimeout bounds a single reachability probe so a hung
	// network check never stalls the requests waiting behind it.
	DefaultConnectivityTimeout = 3 * time.Second
)

// ResourceMonitor samples battery and available memory. The underlying OS
// interface is probed at most once per interval; between probes callers get
// the cached snapshot.
type ResourceMonitor struct {
	interval time.Duration
	probe    func() types.Resources
	now      func() time.Time
	log      zerolog.Logger

	flight singleflight.Group

	mu      sync.Mutex
	last    types.Resources
	checked time.Time
}

// NewResourceMonitor builds a monitor with the platform probe.
func NewResourceMonitor(interval time.Duration, log zerolog.Logger) *ResourceMonitor {
	return &ResourceMonitor{
		interval: interval,
		probe:    probeResources,
		now:      time.Now,
		log:      log.With().Str("component", "sysmon").Logger(),
	}
}

// Sample returns the current resource snapshot, re-probing only when the
// cached one is older than the interval. A failed or unavailable battery
// probe yields BatteryUnknown, which selection treats as sufficient.
func (m *ResourceMonitor) Sample() types.Resources {
	m.mu.Lock()
	if !m.checked.IsZero() && m.now().Sub(m.checked) < m.interval {
		last := m.last
		m.mu.Unlock()
		return last
	}
	m.mu.Unlock()

	v, _, _ := m.flight.Do("resources", func() (interface{}, error) {
		res := m.probe()
		res.SampledAt = m.now()
		m.mu.Lock()
		m.last = res
		m.checked = res.SampledAt
		m.mu.Unlock()
		m.log.Debug().
			Int("battery", res.BatteryPercent).
			Int("avail_ram_mb", res.AvailableRAMMB).
			Bool("charging", res.Charging).
			Msg("resource probe")
		return res, nil
	})
	return v.(types.Resources)
}

// ConnectivityMonitor answers "are we online" with the same rate-limiting
// discipline as ResourceMonitor. The probe is a TCP dial with a short timeout
// independent of any request deadline.
type ConnectivityMonitor struct {
	interval time.Duration
	timeout  time.Duration
	probe    func(ctx context.Context) bool
	now      func() time.Time
	log      zerolog.Logger

	flight singleflight.Group

	mu      sync.Mutex
	online  bool
	checked time.Time
}

// NewConnectivityMonitor builds a monitor probing addr (host:port).
func NewConnectivityMonitor(interval time.Duration, addr string, log zerolog.Logger) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		interval: interval,
		timeout:  DefaultConnectivityTimeout,
		probe:    dialProbe(addr),
		now:      time.Now,
		log:      log.With().Str("component", "sysmon").Logger(),
	}
}

// Online reports reachability, probing at most once per interval.
func (m *ConnectivityMonitor) Online() bool {
	m.mu.Lock()
	if !m.checked.IsZero() && m.now().Sub(m.checked) < m.interval {
		online := m.online
		m.mu.Unlock()
		return online
	}
	m.mu.Unlock()

	v, _, _ := m.flight.Do("online", func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		online := m.probe(ctx)
		m.mu.Lock()
		m.online = online
		m.checked = m.now()
		m.mu.Unlock()
		m.log.Debug().Bool("online", online).Msg("connectivity probe")
		return online, nil
	})
	return v.(bool)
}

// LastChecked returns when connectivity was last probed (zero before the
// first probe).
func (m *ConnectivityMonitor) LastChecked() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checked
}

func dialProbe(addr string) func(ctx context.Context) bool {
	var d net.Dialer
	return func(ctx context.Context) bool {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}
