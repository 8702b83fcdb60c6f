package cli

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

func (h *Handler) cmdSync(ctx context.Context, args []string) error {
	fs := h.flagSet("sync")
	watch := fs.Bool("watch", false, "keep running and sync on the configured schedule")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if err := h.syncOnce(ctx); err != nil {
		return err
	}
	if !*watch {
		return nil
	}
	return h.RunScheduledSync(ctx, h.syncCron)
}

func (h *Handler) syncOnce(ctx context.Context) error {
	res, err := h.tokens.Reconcile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(h.out, "+%d events  +%d participations  -%d participations\n",
		res.AddedEvents, res.AddedParticipations, res.RemovedParticipations)
	return nil
}

// RunScheduledSync reconciles saved tokens with the server on schedule until
// ctx is done. A failed run is logged and retried on the next tick.
func (h *Handler) RunScheduledSync(ctx context.Context, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := h.syncOnce(ctx); err != nil {
			h.log.Warn().Err(err).Msg("scheduled sync failed")
		}
	})
	if err != nil {
		return fmt.Errorf("sync schedule %q: %w", schedule, err)
	}
	h.log.Info().Str("schedule", schedule).Msg("sync scheduler started")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	h.log.Info().Msg("sync scheduler stopped")
	return nil
}
