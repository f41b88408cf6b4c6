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

// uniqueViolation is the Postgres error code raised by the partial unique
// index on draws(draw_date) WHERE NOT is_test.
const uniqueViolation = "23505"

type DrawRepo struct {
	db *sql.DB
}

func NewDrawRepo(db *sql.DB) *DrawRepo {
	return &DrawRepo{db: db}
}

const drawColumns = `id, draw_date, winning_numbers, jackpot_amount, lucky_dip_amount, certificate_ref, is_test, created_at`

// Create inserts a new immutable draw row. The database uniqueness constraint
// is the authoritative duplicate guard: a violation maps to ErrDuplicateDraw.
func (r *DrawRepo) Create(ctx context.Context, d *models.Draw) (*models.Draw, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO draws (id, draw_date, winning_numbers, jackpot_amount, lucky_dip_amount, certificate_ref, is_test, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.DrawDate,
		pq.Array(toInt64(d.WinningNumbers)),
		d.JackpotAmount,
		d.LuckyDipAmount,
		d.CertificateRef,
		d.IsTest,
		d.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, models.ErrDuplicateDraw
		}
		return nil, err
	}
	return d, nil
}

// FindByDate returns the non-test draw for a calendar date, or nil if none
// has been conducted. Used by the orchestrator for duplicate prevention.
func (r *DrawRepo) FindByDate(ctx context.Context, date time.Time) (*models.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE draw_date = $1 AND NOT is_test`
	return r.scanOne(r.db.QueryRowContext(ctx, query, models.DateOnly(date)))
}

// FindByID returns a draw by its identifier, test draws included.
func (r *DrawRepo) FindByID(ctx context.Context, id string) (*models.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindLatest returns the most recent draw by date, or nil when no draw has
// ever been conducted.
func (r *DrawRepo) FindLatest(ctx context.Context, includeTest bool) (*models.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws`
	if !includeTest {
		query += ` WHERE NOT is_test`
	}
	query += ` ORDER BY draw_date DESC, created_at DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

func (r *DrawRepo) scanOne(row *sql.Row) (*models.Draw, error) {
	var (
		d       models.Draw
		numbers pq.Int64Array
	)
	err := row.Scan(
		&d.ID,
		&d.DrawDate,
		&numbers,
		&d.JackpotAmount,
		&d.LuckyDipAmount,
		&d.CertificateRef,
		&d.IsTest,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	d.WinningNumbers = toInt(numbers)
	return &d, nil
}

func toInt64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, n := range in {
		out[i] = int64(n)
	}
	return out
}

func toInt(in []int64) []int {
	out := make([]int, len(in))
	for i, n := range in {
		out[i] = int(n)
	}
	return out
}
