package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"scrimtime/pkg/config"
)

const housekeepingTimeout = 30 * time.Second

// Housekeeper periodically deactivates sessions whose window has long since
// passed, so abandoned negotiations do not pile up as active documents.
type Housekeeper struct {
	cron *cron.Cron
	svc  SessionService
	cfg  *config.Config
}

func NewHousekeeper(svc SessionService, cfg *config.Config) *Housekeeper {
	return &Housekeeper{
		cron: cron.New(),
		svc:  svc,
		cfg:  cfg,
	}
}

// Start registers the cleanup job and starts the scheduler in its own
// goroutine. Returns an error if the configured schedule does not parse.
func (h *Housekeeper) Start() error {
	_, err := h.cron.AddFunc(h.cfg.CleanupSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), housekeepingTimeout)
		defer cancel()

		if _, err := h.svc.DeactivateStale(ctx); err != nil {
			h.cfg.Log.Error("Session cleanup run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	h.cron.Start()
	h.cfg.Log.Info("Session cleanup scheduled", "schedule", h.cfg.CleanupSchedule)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (h *Housekeeper) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
}
