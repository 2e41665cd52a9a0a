// Package scheduler owns the periodic contract transition triggers: activation
// of confirmed contracts whose start has arrived and completion of active
// contracts whose end has passed. The two jobs run on independent cron entries
// and are started on service boot and stopped on shutdown.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"carrental/src/core/usecase"
	"carrental/src/infra/config"
)

// Scheduler drives the bulk contract transitions on fixed schedules.
type Scheduler struct {
	cron      *cron.Cron
	contracts *usecase.ContractService
	log       *slog.Logger
}

// New registers the activation and completion jobs from config.
func New(cfg config.SchedulerConfig, contracts *usecase.ContractService, log *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		contracts: contracts,
		log:       log,
	}

	if _, err := s.cron.AddFunc(cfg.ActivationSpec, s.runActivation); err != nil {
		return nil, fmt.Errorf("invalid activation schedule %q: %w", cfg.ActivationSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.CompletionSpec, s.runCompletion); err != nil {
		return nil, fmt.Errorf("invalid completion schedule %q: %w", cfg.CompletionSpec, err)
	}

	return s, nil
}

// Start begins triggering jobs in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop halts the triggers and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runActivation() {
	res, err := s.contracts.ActivateDueContracts(context.Background())
	if err != nil {
		s.log.Error("activation sweep failed", "error", err)
		return
	}
	if res.Processed > 0 || res.Failed > 0 {
		s.log.Info("activation sweep finished",
			"processed", res.Processed,
			"skipped", res.Skipped,
			"failed", res.Failed,
		)
	}
}

func (s *Scheduler) runCompletion() {
	res, err := s.contracts.CompleteDueContracts(context.Background())
	if err != nil {
		s.log.Error("completion sweep failed", "error", err)
		return
	}
	if res.Processed > 0 || res.Failed > 0 {
		s.log.Info("completion sweep finished",
			"processed", res.Processed,
			"skipped", res.Skipped,
			"failed", res.Failed,
		)
	}
}
