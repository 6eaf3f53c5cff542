// Package poller drives the measurement loop: restore the network link,
// make at most one broker connection attempt per iteration, and publish a
// reading once the send interval has elapsed.
package poller

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/niktheblak/lightlogger/pkg/sensor"
)

// Link re-establishes network connectivity, blocking until it is restored
// and the session clock is synced.
type Link interface {
	EnsureConnected(ctx context.Context) error
}

// Broker is the outbound MQTT surface the loop publishes through.
type Broker interface {
	IsConnected() bool
	EnsureConnected() error
	Publish(subtopic, value string) error
}

// Reader produces one full reading per call.
type Reader interface {
	Read() (sensor.Reading, error)
}

// Marker is the session state consulted for interval gating.
type Marker interface {
	Epoch() int64
	LastSend() int64
	MarkSent(epoch int64)
}

type Poller struct {
	Link     Link
	Broker   Broker
	Reader   Reader
	Session  Marker
	Interval time.Duration // send interval between readings
	Tick     time.Duration // loop pacing, defaults to one second
	Logger   *slog.Logger
}

// Run drives the loop until ctx is cancelled. There is no other terminal
// state; every failure is retried on a later iteration.
func (p *Poller) Run(ctx context.Context) error {
	if p.Logger == nil {
		p.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tick := p.Tick
	if tick <= 0 {
		tick = time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Iterate(ctx)
		}
	}
}

// Iterate runs one pass of the loop.
func (p *Poller) Iterate(ctx context.Context) {
	if err := p.Link.EnsureConnected(ctx); err != nil {
		p.Logger.LogAttrs(ctx, slog.LevelWarn, "Network unavailable", slog.Any("error", err))
		return
	}
	if !p.Broker.IsConnected() {
		if err := p.Broker.EnsureConnected(); err != nil {
			// No state retained; the next iteration tries again.
			p.Logger.LogAttrs(ctx, slog.LevelWarn, "Broker unavailable", slog.Any("error", err))
			return
		}
	}
	now := p.Session.Epoch()
	if now-p.Session.LastSend() < int64(p.Interval/time.Second) {
		return
	}
	reading, err := p.Reader.Read()
	if err != nil {
		p.Logger.LogAttrs(ctx, slog.LevelError, "Sensor read failed", slog.Any("error", err))
		return
	}
	for _, f := range reading.Fields() {
		if err := p.Broker.Publish(f.Name, f.Value); err != nil {
			p.Logger.LogAttrs(ctx, slog.LevelWarn, "Publish failed", slog.String("field", f.Name), slog.Any("error", err))
		}
	}
	p.Session.MarkSent(now)
	p.Logger.LogAttrs(ctx, slog.LevelInfo, "Reading published",
		slog.Uint64("reading", reading.Number),
		slog.Int("lux", reading.Lux),
		slog.Int("ct", reading.ColorTemperature))
}
