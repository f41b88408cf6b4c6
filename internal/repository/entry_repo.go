package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kelbrookafc/clubdraw/internal/models"
)

type EntryRepo struct {
	db *sql.DB
}

func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

const entryColumns = `id, subscriber_id, draw_date, numbers, active, origin, subscription_id, created_at, updated_at`

// Create registers a new line against a draw date.
func (r *EntryRepo) Create(ctx context.Context, e *models.Entry) (*models.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	query := `
		INSERT INTO entries (id, subscriber_id, draw_date, numbers, active, origin, subscription_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.SubscriberID,
		e.DrawDate,
		pq.Array(toInt64(e.Numbers)),
		e.Active,
		e.Origin,
		nullString(e.SubscriptionID),
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindByDrawDate returns every entry registered for a date, inactive ones
// included; the settlement engine decides eligibility, not the repository.
func (r *EntryRepo) FindByDrawDate(ctx context.Context, date time.Time) ([]models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE draw_date = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, models.DateOnly(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e       models.Entry
			numbers pq.Int64Array
			subID   sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.SubscriberID, &e.DrawDate, &numbers, &e.Active, &e.Origin, &subID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Numbers = toInt(numbers)
		e.SubscriptionID = subID.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateNumbers changes an entry's line. Only subscription-origin entries
// whose draw date is still in the future are editable; everything else fails
// with ErrEntryLocked and changes nothing. The row is locked for the check.
func (r *EntryRepo) UpdateNumbers(ctx context.Context, entryID string, numbers []int) error {
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

	var (
		drawDate time.Time
		origin   string
	)
	lockQuery := `SELECT draw_date, origin FROM entries WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockQuery, entryID).Scan(&drawDate, &origin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return err
	}

	today := models.DateOnly(time.Now())
	if origin != models.OriginSubscription || !models.DateOnly(drawDate).After(today) {
		return models.ErrEntryLocked
	}

	update := `UPDATE entries SET numbers = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, entryID, pq.Array(toInt64(numbers)), time.Now().UTC()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
