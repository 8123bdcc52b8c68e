package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"localcloud-tools-backend/config"
	"localcloud-tools-backend/internal/gateway"
)

// NewScheduler runs a periodic health probe against the emulator gateway so
// an unreachable or degraded emulator shows up in the server logs before a
// tool call fails.
func NewScheduler(lc fx.Lifecycle, cfg *config.Config, gatewayClient gateway.Client) *cron.Cron {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))

	schedule := cfg.Emulator.HealthSchedule
	_, err := c.AddFunc(schedule, func() {
		health, err := gatewayClient.CheckHealth(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("Emulator health probe failed")
			return
		}
		log.Debug().Int("services", len(health.Services)).Str("version", health.Version).Msg("Emulator healthy")
	})
	if err != nil {
		log.Fatal().Err(err).Str("schedule", schedule).Msg("Failed to add cron job")
		return nil
	}
	log.Info().Str("schedule", schedule).Msg("Scheduled emulator health probe")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msg("Starting cron scheduler")
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping cron scheduler...")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
				log.Info().Msg("Cron scheduler stopped gracefully.")
				return nil
			case <-ctx.Done():
				log.Error().Msg("Context cancelled while waiting for cron scheduler to stop.")
				return ctx.Err()
			}
		},
	})

	return c
}
