// Package notify emails draw winners and the admin summary through an
// external email-sending API.
package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kelbrookafc/clubdraw/internal/models"
)

// DefaultSendInterval is the minimum gap between consecutive sends, required
// by the email provider's rate limit.
const DefaultSendInterval = 600 * time.Millisecond

// ContactDirectory resolves subscriber ids to contact details.
type ContactDirectory interface {
	GetByID(ctx context.Context, id string) (*models.Subscriber, error)
}

// Report summarizes one dispatch batch.
type Report struct {
	JackpotWinners  int `json:"jackpot_winners"`
	LuckyDipWinners int `json:"lucky_dip_winners"`
	TotalWinners    int `json:"total_winners"`
	EmailsAttempted int `json:"emails_attempted"`
	EmailsFailed    int `json:"emails_failed"`
}

// Dispatcher sends winner and summary emails sequentially, pacing sends with
// a rate limiter. Individual failures are logged and counted, never fatal.
type Dispatcher struct {
	mailer     Mailer
	contacts   ContactDirectory
	adminEmail string
	limiter    *rate.Limiter
	log        *logrus.Logger
}

func NewDispatcher(mailer Mailer, contacts ContactDirectory, adminEmail string, interval time.Duration, log *logrus.Logger) *Dispatcher {
	if interval <= 0 {
		interval = DefaultSendInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		mailer:     mailer,
		contacts:   contacts,
		adminEmail: adminEmail,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		log:        log,
	}
}

// DispatchResults emails every winner in the settlement, then the admin
// summary. When includeSubscribers is false (test draws) only the summary is
// sent. The returned report reflects what was attempted; the caller's success
// never depends on email outcomes.
func (d *Dispatcher) DispatchResults(ctx context.Context, draw *models.Draw, st *models.Settlement, includeSubscribers bool) Report {
	rep := Report{
		JackpotWinners:  st.JackpotWinners,
		LuckyDipWinners: st.LuckyDipWinners,
	}

	for _, res := range st.Results {
		if !res.IsWinner() {
			continue
		}
		rep.TotalWinners++
		if !includeSubscribers {
			continue
		}

		rep.EmailsAttempted++
		if err := d.sendWinnerEmail(ctx, draw, res); err != nil {
			rep.EmailsFailed++
			d.log.WithError(err).
				WithField("subscriber_id", res.SubscriberID).
				WithField("tier", res.Tier).
				Warn("winner email failed")
		}
	}

	if d.adminEmail != "" {
		rep.EmailsAttempted++
		if err := d.sendSummary(ctx, draw, st, rep); err != nil {
			rep.EmailsFailed++
			d.log.WithError(err).Warn("admin summary email failed")
		}
	}

	return rep
}

func (d *Dispatcher) sendWinnerEmail(ctx context.Context, draw *models.Draw, res models.Result) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	sub, err := d.contacts.GetByID(ctx, res.SubscriberID)
	if err != nil {
		return err
	}
	if sub == nil || sub.Email == "" {
		return errNoContact(res.SubscriberID)
	}

	var msg Message
	if res.Tier == models.TierJackpot {
		msg = jackpotMessage(sub.Email, sub, draw, res)
	} else {
		msg = luckyDipMessage(sub.Email, sub, draw, res)
	}
	return d.mailer.Send(ctx, msg)
}

func (d *Dispatcher) sendSummary(ctx context.Context, draw *models.Draw, st *models.Settlement, rep Report) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	return d.mailer.Send(ctx, summaryMessage(d.adminEmail, draw, st, rep))
}

type errNoContact string

func (e errNoContact) Error() string {
	return "no contact details for subscriber " + string(e)
}
