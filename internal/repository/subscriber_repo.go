package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kelbrookafc/clubdraw/internal/models"
)

// SubscriberRepo is the contact directory for winner notifications.
type SubscriberRepo struct {
	db *sql.DB
}

func NewSubscriberRepo(db *sql.DB) *SubscriberRepo {
	return &SubscriberRepo{db: db}
}

// GetByID returns a subscriber, or nil when the id is unknown.
func (r *SubscriberRepo) GetByID(ctx context.Context, id string) (*models.Subscriber, error) {
	query := `SELECT id, email, first_name, last_name, created_at FROM subscribers WHERE id = $1`

	var s models.Subscriber
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Email, &s.FirstName, &s.LastName, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
