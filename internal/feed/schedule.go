package feed

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// RunScheduled runs job once immediately and then on every tick of the
// standard five-field cron expression until ctx is done.
func RunScheduled(ctx context.Context, expr string, job func(context.Context) error) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	run := func() {
		if err := job(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled build failed")
		}
	}
	run()
	c := cron.New()
	if _, err := c.AddFunc(expr, run); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	c.Start()
	log.Info().Str("schedule", expr).Msg("scheduler started")
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
