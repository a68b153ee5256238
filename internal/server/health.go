package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	cron "github.com/robfig/cron/v3"

	"github.com/ytget/invidious/api"
	"github.com/ytget/invidious/client"
	"github.com/ytget/invidious/internal/logger"
	"github.com/ytget/invidious/urlmatch"
)

const (
	statsPath    = "/api/v1/stats"
	probeTimeout = 15 * time.Second
)

// InstanceStatus is the last known state of one known instance.
type InstanceStatus struct {
	Host      string     `json:"host"`
	Default   bool       `json:"default"`
	Healthy   *bool      `json:"healthy,omitempty"`
	LatencyMS int64      `json:"latency_ms,omitempty"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Health tracks reachability of the instance table.
type Health struct {
	mu     sync.RWMutex
	http   *client.Client
	scheme string
	status map[string]InstanceStatus
	now    func() time.Time
}

// NewHealth creates a tracker that probes instances over HTTPS using hc
// (a default client when nil).
func NewHealth(hc *client.Client) *Health {
	if hc == nil {
		hc = client.New()
	}
	return &Health{
		http:   hc,
		scheme: "https",
		status: make(map[string]InstanceStatus),
		now:    time.Now,
	}
}

// Snapshot returns the status of every known instance in table order.
func (h *Health) Snapshot() []InstanceStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]InstanceStatus, 0, len(urlmatch.Instances))
	for _, host := range urlmatch.Instances {
		st, ok := h.status[host]
		if !ok {
			st = InstanceStatus{Host: host}
		}
		st.Default = host == urlmatch.DefaultInstance()
		out = append(out, st)
	}
	return out
}

// ProbeAll checks every known instance in sequence.
func (h *Health) ProbeAll(ctx context.Context) {
	for _, host := range urlmatch.Instances {
		if ctx.Err() != nil {
			return
		}
		st := h.probe(ctx, host)
		h.mu.Lock()
		h.status[host] = st
		h.mu.Unlock()
	}
}

func (h *Health) probe(ctx context.Context, host string) InstanceStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := h.now()
	resp, err := h.http.Get(ctx, h.scheme+"://"+host+statsPath, client.AcceptJSON)
	checked := h.now()
	st := InstanceStatus{Host: host, CheckedAt: &checked}
	healthy := false
	switch {
	case err != nil:
		st.Error = err.Error()
	case resp.StatusCode != http.StatusOK:
		msg, ok := api.DecodeError(resp.Body)
		if !ok {
			msg = http.StatusText(resp.StatusCode)
		}
		st.Error = fmt.Sprintf("HTTP Error %d: %s", resp.StatusCode, msg)
	default:
		healthy = true
		st.LatencyMS = checked.Sub(start).Milliseconds()
	}
	st.Healthy = &healthy

	logger.WithComponent(logger.ComponentServer).Debug("instance probed", map[string]interface{}{
		"host":    host,
		"healthy": healthy,
	})
	return st
}

// Schedule runs ProbeAll immediately and then on a cron schedule
// ("@every 10m", "0 */5 * * * *"). The returned function stops it.
func (h *Health) Schedule(ctx context.Context, spec string) (func(), error) {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(spec, func() { h.ProbeAll(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid probe schedule %q: %w", spec, err)
	}
	c.Start()
	go h.ProbeAll(ctx)
	return func() {
		<-c.Stop().Done()
	}, nil
}
