// Package netup re-establishes network connectivity and keeps the device
// session clock synchronized from NTP.
package netup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/beevik/ntp"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackpal/gateway"
)

// Clock receives authoritative time fetched from the network.
type Clock interface {
	Sync(epoch int64)
	Synced() bool
}

// RetryPolicy controls the fixed-delay retry loops. A zero MaxAttempts
// retries indefinitely, matching the block-until-connected behavior of the
// device; tests and cautious deployments can bound it.
type RetryPolicy struct {
	Delay       time.Duration
	MaxAttempts uint64
}

func (p RetryPolicy) backoff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = backoff.NewConstantBackOff(p.Delay)
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, p.MaxAttempts-1)
	}
	return backoff.WithContext(b, ctx)
}

// Connector restores the network link and resynchronizes the clock after
// every reconnection, including the first connection of the process.
type Connector struct {
	clock     Clock
	ntpServer string
	retry     RetryPolicy
	logger    *slog.Logger

	// probe and fetchTime are swapped out in tests.
	probe     func() error
	fetchTime func(server string) (int64, error)
}

func NewConnector(clock Clock, ntpServer string, retry RetryPolicy, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Connector{
		clock:     clock,
		ntpServer: ntpServer,
		retry:     retry,
		logger:    logger,
		probe:     probeGateway,
		fetchTime: fetchNTP,
	}
}

// Up reports whether the network link is currently usable.
func (c *Connector) Up() bool {
	return c.probe() == nil
}

// EnsureConnected returns immediately when the link is up and the clock has
// been synced. Otherwise it blocks, retrying the link probe with a fixed
// delay until it succeeds, then fetching network time until a nonzero epoch
// is obtained. It fails only on context cancellation or policy exhaustion.
func (c *Connector) EnsureConnected(ctx context.Context) error {
	if c.Up() && c.clock.Synced() {
		return nil
	}
	op := func() error {
		if err := c.probe(); err != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "Network link down, retrying", slog.Any("error", err))
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, c.retry.backoff(ctx)); err != nil {
		return fmt.Errorf("network link: %w", err)
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "Network link up")
	return c.syncClock(ctx)
}

func (c *Connector) syncClock(ctx context.Context) error {
	op := func() error {
		epoch, err := c.fetchTime(c.ntpServer)
		if err != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "Time fetch failed, retrying", slog.String("server", c.ntpServer), slog.Any("error", err))
			return err
		}
		if epoch == 0 {
			return errors.New("zero epoch from time server")
		}
		c.clock.Sync(epoch)
		return nil
	}
	if err := backoff.Retry(op, c.retry.backoff(ctx)); err != nil {
		return fmt.Errorf("time sync: %w", err)
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, "Clock synchronized", slog.String("server", c.ntpServer))
	return nil
}

func probeGateway() error {
	_, err := gateway.DiscoverGateway()
	return err
}

func fetchNTP(server string) (int64, error) {
	t, err := ntp.Time(server)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}
