// Package service holds the draw orchestrator and settlement engine: the
// conduct-and-settle lifecycle behind the club's monthly draw.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kelbrookafc/clubdraw/internal/models"
	"github.com/kelbrookafc/clubdraw/internal/notify"
)

// ErrDrawInProgress means the in-process guard is held: a draw is running or
// cooling down.
var ErrDrawInProgress = errors.New("a draw is already in progress")

// DefaultGuardCooldown bounds how soon a finished draw can be re-triggered.
const DefaultGuardCooldown = 5 * time.Minute

// Stores the orchestrator depends on; satisfied by internal/repository.

type DrawStore interface {
	FindByDate(ctx context.Context, date time.Time) (*models.Draw, error)
	Create(ctx context.Context, d *models.Draw) (*models.Draw, error)
}

type EntryStore interface {
	FindByDrawDate(ctx context.Context, date time.Time) ([]models.Entry, error)
}

type WinnerStore interface {
	SaveResults(ctx context.Context, drawID string, drawDate time.Time, results []models.Result) error
}

// NumberSource is the external certified randomness provider.
type NumberSource interface {
	Draw(ctx context.Context, count, min, max int) ([]int, string, error)
}

// Notifier delivers winner and summary emails; its outcome never affects the
// orchestrator's result.
type Notifier interface {
	DispatchResults(ctx context.Context, draw *models.Draw, st *models.Settlement, includeSubscribers bool) notify.Report
}

// ConductRequest is the orchestrator entry point payload.
type ConductRequest struct {
	DrawDate      time.Time
	JackpotAmount int64
	IsTest        bool
}

// ConductResult is returned once the draw is persisted and settled.
type ConductResult struct {
	Draw            *models.Draw
	WinningNumbers  []int
	JackpotWinners  int
	LuckyDipWinners int
}

// Orchestrator sequences one draw run: guard, duplicate check, provider
// call, persist, settle, notify. Steps are strictly sequential; the draws
// table's uniqueness constraint is the sole serialization point between
// concurrent runs.
type Orchestrator struct {
	draws    DrawStore
	entries  EntryStore
	winners  WinnerStore
	source   NumberSource
	notifier Notifier
	engine   *SettlementEngine
	guard    *drawGuard

	luckyDipAmount int64
	cooldown       time.Duration
	log            *logrus.Logger
}

// Options tunes orchestrator behavior.
type Options struct {
	LuckyDipAmount int64
	GuardCooldown  time.Duration
	Logger         *logrus.Logger
}

func NewOrchestrator(draws DrawStore, entries EntryStore, winners WinnerStore, source NumberSource, notifier Notifier, engine *SettlementEngine, opts Options) *Orchestrator {
	if opts.GuardCooldown == 0 {
		opts.GuardCooldown = DefaultGuardCooldown
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		draws:          draws,
		entries:        entries,
		winners:        winners,
		source:         source,
		notifier:       notifier,
		engine:         engine,
		guard:          newDrawGuard(),
		luckyDipAmount: opts.LuckyDipAmount,
		cooldown:       opts.GuardCooldown,
		log:            opts.Logger,
	}
}

// State reports where the orchestrator currently is in the draw lifecycle.
func (o *Orchestrator) State() State {
	return o.guard.currentState()
}

// Conduct runs one complete draw for the requested date. Duplicate-draw and
// provider failures abort with no Draw row written and release the guard so a
// later attempt can proceed. Once the Draw row exists it is never rolled
// back; settlement or notification trouble is logged instead.
func (o *Orchestrator) Conduct(ctx context.Context, req ConductRequest) (*ConductResult, error) {
	if !o.guard.tryAcquire() {
		return nil, ErrDrawInProgress
	}
	o.guard.setState(StateDrawing)

	date := models.DateOnly(req.DrawDate)
	log := o.log.WithField("draw_date", date.Format(models.DrawDateFormat)).WithField("is_test", req.IsTest)

	// Test draws are unconstrained; live draws must be the first for the date.
	if !req.IsTest {
		existing, err := o.draws.FindByDate(ctx, date)
		if err != nil {
			o.abort()
			return nil, fmt.Errorf("check existing draw: %w", err)
		}
		if existing != nil {
			o.abort()
			log.Info("draw already conducted")
			return nil, models.ErrDuplicateDraw
		}
	}

	numbers, certificate, err := o.source.Draw(ctx, models.NumbersPerLine, models.NumberMin, models.NumberMax)
	if err != nil {
		o.abort()
		return nil, fmt.Errorf("generate winning numbers: %w", err)
	}

	draw, err := o.draws.Create(ctx, &models.Draw{
		DrawDate:       date,
		WinningNumbers: numbers,
		JackpotAmount:  req.JackpotAmount,
		LuckyDipAmount: o.luckyDipAmount,
		CertificateRef: certificate,
		IsTest:         req.IsTest,
	})
	if err != nil {
		// A concurrent run won the insert race; the constraint decided.
		o.abort()
		if errors.Is(err, models.ErrDuplicateDraw) {
			return nil, models.ErrDuplicateDraw
		}
		return nil, fmt.Errorf("persist draw: %w", err)
	}
	log = log.WithField("draw_id", draw.ID)

	o.guard.setState(StateSettling)
	entries, err := o.entries.FindByDrawDate(ctx, date)
	if err != nil {
		// The draw row stays; winners can be settled again via the
		// notification endpoint once the database recovers.
		o.finish()
		return nil, fmt.Errorf("load entries: %w", err)
	}

	settlement := o.engine.Settle(draw, entries)
	// Test draws never pay out, so their results stay off the dashboard
	// just as their winner emails are skipped.
	if !draw.IsTest && len(settlement.Winners()) > 0 {
		if err := o.winners.SaveResults(ctx, draw.ID, date, settlement.Results); err != nil {
			log.WithError(err).Warn("failed to persist winners")
		}
	}

	o.guard.setState(StateNotifying)
	report := o.notifier.DispatchResults(ctx, draw, settlement, !draw.IsTest)

	log.WithField("winning_numbers", draw.WinningNumbers).
		WithField("jackpot_winners", settlement.JackpotWinners).
		WithField("lucky_dip_winners", settlement.LuckyDipWinners).
		WithField("emails_attempted", report.EmailsAttempted).
		WithField("emails_failed", report.EmailsFailed).
		Info("draw conducted")

	o.finish()
	return &ConductResult{
		Draw:            draw,
		WinningNumbers:  draw.WinningNumbers,
		JackpotWinners:  settlement.JackpotWinners,
		LuckyDipWinners: settlement.LuckyDipWinners,
	}, nil
}

// abort releases the guard immediately so a retry is not blocked.
func (o *Orchestrator) abort() {
	o.guard.setState(StateAborted)
	o.guard.release()
}

// finish returns to idle, holding the latch through the cooldown window.
func (o *Orchestrator) finish() {
	o.guard.setState(StateIdle)
	o.guard.releaseAfter(o.cooldown)
}
