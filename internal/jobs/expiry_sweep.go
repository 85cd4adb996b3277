package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/prepkart/prepkart-api/internal/services"
	"github.com/prepkart/prepkart-api/internal/utils"
)

const sweepTimeout = 4 * time.Minute

// ExpirySweeper runs the order entitlement-expiry sweep on an in-process
// schedule. It complements the HTTP cron endpoint; deployments pick one by
// leaving SWEEP_SCHEDULE empty or set.
type ExpirySweeper struct {
	orders   services.OrderService
	logger   utils.Logger
	schedule string
	cron     *cron.Cron
}

func NewExpirySweeper(orders services.OrderService, schedule string, logger utils.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		orders:   orders,
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the sweep and starts the scheduler. Overlapping runs are
// skipped rather than queued.
func (s *ExpirySweeper) Start() error {
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		summary, err := s.orders.ExpireOverdueItems(ctx)
		if err != nil {
			s.logger.Error("Scheduled expiry sweep failed", "error", err)
			return
		}
		s.logger.Info("Scheduled expiry sweep finished",
			"orders_updated", summary.OrdersUpdated,
			"items_expired", summary.ItemsExpired,
			"failed_orders", len(summary.FailedOrders))
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Expiry sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ExpirySweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
