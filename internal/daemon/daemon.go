// Package daemon runs the agent's periodic collect-and-submit loop.
package daemon

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-tangra/go-tangra-memdev/internal/collector"
	"github.com/go-tangra/go-tangra-memdev/internal/props"
	"github.com/go-tangra/go-tangra-memdev/internal/sender"
)

// Config holds daemon-mode configuration.
type Config struct {
	CollectorURL string
	ClientSecret string
	Interval     time.Duration
	Source       props.Source
	SourceName   string
}

const (
	baseBackoff = 1 * time.Second
	maxBackoff  = 2 * time.Minute
)

// Run performs an initial collect-and-submit, then re-submits every
// interval. Submit failures retry with exponential backoff until the
// next interval tick would be due anyway.
func Run(ctx context.Context, cfg Config, log zerolog.Logger) error {
	if err := collectAndSend(ctx, cfg, log); err != nil {
		return fmt.Errorf("initial snapshot submit: %w", err)
	}
	log.Info().Dur("interval", cfg.Interval).Msg("Initial snapshot submitted; entering daemon mode")

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Daemon shutting down")
			return nil
		case <-ticker.C:
			submitWithRetry(ctx, cfg, log)
		}
	}
}

func submitWithRetry(ctx context.Context, cfg Config, log zerolog.Logger) {
	deadline := time.Now().Add(cfg.Interval)

	for attempt := 1; ; attempt++ {
		err := collectAndSend(ctx, cfg, log)
		if err == nil || ctx.Err() != nil {
			return
		}

		backoff := calcBackoff(attempt)
		if time.Now().Add(backoff).After(deadline) {
			log.Error().Err(err).Int("attempts", attempt).Msg("Submit failed; waiting for next interval")
			return
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).Msg("Submit failed; retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func collectAndSend(ctx context.Context, cfg Config, log zerolog.Logger) error {
	snap, err := collector.Collect(cfg.Source, cfg.SourceName)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	id, err := sender.Send(ctx, cfg.CollectorURL, cfg.ClientSecret, snap)
	if err != nil {
		return err
	}

	log.Info().Str("id", id).Int("devices", len(snap.Memory.Devices)).Msg("Snapshot submitted")
	return nil
}

func calcBackoff(attempt int) time.Duration {
	d := baseBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}
