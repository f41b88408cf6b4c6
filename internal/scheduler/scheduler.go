// Package scheduler triggers the monthly draw server-side. Any client-facing
// countdown is cosmetic; this is the authoritative trigger.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/kelbrookafc/clubdraw/internal/models"
	"github.com/kelbrookafc/clubdraw/internal/service"
)

// Conductor is the orchestrator surface the scheduler needs.
type Conductor interface {
	Conduct(ctx context.Context, req service.ConductRequest) (*service.ConductResult, error)
}

// Invalidator drops cached draw reads once a new draw exists. Optional.
type Invalidator interface {
	Invalidate()
}

type Scheduler struct {
	cron      *cron.Cron
	conductor Conductor
	cache     Invalidator
	jackpot   int64
	log       *logrus.Logger
}

func New(conductor Conductor, cache Invalidator, jackpot int64, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		cron:      cron.New(),
		conductor: conductor,
		cache:     cache,
		jackpot:   jackpot,
		log:       log,
	}
}

// Start registers the draw job against the given cron spec and starts the
// scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithField("schedule", spec).Info("draw scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	req := service.ConductRequest{
		DrawDate:      models.DateOnly(time.Now()),
		JackpotAmount: s.jackpot,
	}
	result, err := s.conductor.Conduct(ctx, req)
	switch {
	case errors.Is(err, models.ErrDuplicateDraw):
		s.log.Info("scheduled draw skipped: already conducted")
	case errors.Is(err, service.ErrDrawInProgress):
		s.log.Info("scheduled draw skipped: draw in progress")
	case err != nil:
		s.log.WithError(err).Error("scheduled draw failed")
	default:
		if s.cache != nil {
			s.cache.Invalidate()
		}
		s.log.WithField("winning_numbers", result.WinningNumbers).Info("scheduled draw conducted")
	}
}
