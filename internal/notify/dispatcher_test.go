package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelbrookafc/clubdraw/internal/models"
)

type fakeMailer struct {
	sent    []Message
	failFor map[string]bool
}

func (m *fakeMailer) Send(ctx context.Context, msg Message) error {
	if m.failFor[msg.To] {
		return errors.New("smtp rejected")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeDirectory struct {
	subs map[string]*models.Subscriber
}

func (d *fakeDirectory) GetByID(ctx context.Context, id string) (*models.Subscriber, error) {
	return d.subs[id], nil
}

func testSettlement() *models.Settlement {
	return &models.Settlement{
		Results: []models.Result{
			{EntryID: "e1", SubscriberID: "s1", Numbers: []int{3, 9, 17, 30}, Matches: 4, Tier: models.TierJackpot, PrizeAmount: 50000},
			{EntryID: "e2", SubscriberID: "s2", Numbers: []int{1, 2, 4, 5}, Matches: 0, Tier: models.TierLuckyDip, PrizeAmount: 1000},
			{EntryID: "e3", SubscriberID: "s3", Numbers: []int{3, 1, 2, 4}, Matches: 1, Tier: models.TierNone},
		},
		JackpotWinners:  1,
		LuckyDipWinners: 1,
	}
}

func testDispatchDraw() *models.Draw {
	return &models.Draw{
		ID:             "draw-1",
		DrawDate:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		WinningNumbers: []int{3, 9, 17, 30},
		JackpotAmount:  50000,
		LuckyDipAmount: 1000,
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestDispatcher(mailer Mailer, dir ContactDirectory) *Dispatcher {
	return NewDispatcher(mailer, dir, "admin@club.example.com", time.Millisecond, quietLogger())
}

func TestDispatchResults_SendsWinnersAndSummary(t *testing.T) {
	mailer := &fakeMailer{}
	dir := &fakeDirectory{subs: map[string]*models.Subscriber{
		"s1": {ID: "s1", Email: "one@example.com", FirstName: "Alex"},
		"s2": {ID: "s2", Email: "two@example.com", FirstName: "Sam"},
	}}
	d := newTestDispatcher(mailer, dir)

	rep := d.DispatchResults(context.Background(), testDispatchDraw(), testSettlement(), true)

	assert.Equal(t, 1, rep.JackpotWinners)
	assert.Equal(t, 1, rep.LuckyDipWinners)
	assert.Equal(t, 2, rep.TotalWinners)
	assert.Equal(t, 3, rep.EmailsAttempted) // two winners + summary
	assert.Equal(t, 0, rep.EmailsFailed)

	require.Len(t, mailer.sent, 3)
	assert.Equal(t, "one@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].Subject, "jackpot")
	assert.Equal(t, "two@example.com", mailer.sent[1].To)
	assert.Contains(t, mailer.sent[1].Subject, "lucky dip")
	assert.Equal(t, "admin@club.example.com", mailer.sent[2].To)
}

func TestDispatchResults_IndividualFailureDoesNotAbortBatch(t *testing.T) {
	mailer := &fakeMailer{failFor: map[string]bool{"one@example.com": true}}
	dir := &fakeDirectory{subs: map[string]*models.Subscriber{
		"s1": {ID: "s1", Email: "one@example.com"},
		"s2": {ID: "s2", Email: "two@example.com"},
	}}
	d := newTestDispatcher(mailer, dir)

	rep := d.DispatchResults(context.Background(), testDispatchDraw(), testSettlement(), true)

	assert.Equal(t, 3, rep.EmailsAttempted)
	assert.Equal(t, 1, rep.EmailsFailed)

	// The lucky-dip winner and the summary still went out.
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "two@example.com", mailer.sent[0].To)
	assert.Equal(t, "admin@club.example.com", mailer.sent[1].To)
}

func TestDispatchResults_MissingContactCountsAsFailure(t *testing.T) {
	mailer := &fakeMailer{}
	dir := &fakeDirectory{subs: map[string]*models.Subscriber{}}
	d := newTestDispatcher(mailer, dir)

	rep := d.DispatchResults(context.Background(), testDispatchDraw(), testSettlement(), true)

	assert.Equal(t, 3, rep.EmailsAttempted)
	assert.Equal(t, 2, rep.EmailsFailed)
	require.Len(t, mailer.sent, 1) // summary only
	assert.Equal(t, "admin@club.example.com", mailer.sent[0].To)
}

func TestDispatchResults_TestDrawSummaryOnly(t *testing.T) {
	mailer := &fakeMailer{}
	dir := &fakeDirectory{subs: map[string]*models.Subscriber{
		"s1": {ID: "s1", Email: "one@example.com"},
	}}
	d := newTestDispatcher(mailer, dir)

	draw := testDispatchDraw()
	draw.IsTest = true
	rep := d.DispatchResults(context.Background(), draw, testSettlement(), false)

	assert.Equal(t, 2, rep.TotalWinners)
	assert.Equal(t, 1, rep.EmailsAttempted)
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].Subject, "[TEST]")
}

func TestDispatchResults_PacingBetweenSends(t *testing.T) {
	mailer := &fakeMailer{}
	dir := &fakeDirectory{subs: map[string]*models.Subscriber{
		"s1": {ID: "s1", Email: "one@example.com"},
		"s2": {ID: "s2", Email: "two@example.com"},
	}}
	interval := 30 * time.Millisecond
	d := NewDispatcher(mailer, dir, "admin@club.example.com", interval, quietLogger())

	start := time.Now()
	d.DispatchResults(context.Background(), testDispatchDraw(), testSettlement(), true)
	elapsed := time.Since(start)

	// Three sends: the first is immediate, the next two wait one interval each.
	assert.GreaterOrEqual(t, elapsed, 2*interval)
}
