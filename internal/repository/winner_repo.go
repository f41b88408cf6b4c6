package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kelbrookafc/clubdraw/internal/models"
)

// WinnerRepo records prize-winning results so the dashboard can show wins
// independently of email delivery.
type WinnerRepo struct {
	db *sql.DB
}

func NewWinnerRepo(db *sql.DB) *WinnerRepo {
	return &WinnerRepo{db: db}
}

// SaveResults persists the winning results of a settlement in one
// transaction. Non-winning results are skipped.
func (r *WinnerRepo) SaveResults(ctx context.Context, drawID string, drawDate time.Time, results []models.Result) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	insert := `
		INSERT INTO draw_winners (id, draw_id, draw_date, entry_id, subscriber_id, numbers, matches, tier, prize_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	now := time.Now().UTC()
	for _, res := range results {
		if !res.IsWinner() {
			continue
		}
		_, err := tx.ExecContext(ctx, insert,
			uuid.NewString(),
			drawID,
			models.DateOnly(drawDate),
			res.EntryID,
			res.SubscriberID,
			pq.Array(toInt64(res.Numbers)),
			res.Matches,
			string(res.Tier),
			res.PrizeAmount,
			now,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// FindByDrawDate returns the recorded winners for a draw date.
func (r *WinnerRepo) FindByDrawDate(ctx context.Context, date time.Time) ([]models.Result, error) {
	query := `
		SELECT entry_id, subscriber_id, numbers, matches, tier, prize_amount
		FROM draw_winners
		WHERE draw_date = $1
		ORDER BY tier, created_at
	`
	rows, err := r.db.QueryContext(ctx, query, models.DateOnly(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.Result
	for rows.Next() {
		var (
			res     models.Result
			numbers pq.Int64Array
			tier    string
		)
		if err := rows.Scan(&res.EntryID, &res.SubscriberID, &numbers, &res.Matches, &tier, &res.PrizeAmount); err != nil {
			return nil, err
		}
		res.Numbers = toInt(numbers)
		res.Tier = models.Tier(tier)
		results = append(results, res)
	}
	return results, rows.Err()
}
