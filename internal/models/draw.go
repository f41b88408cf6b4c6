package models

import (
	"errors"
	"fmt"
	"time"
)

// Line geometry for the monthly draw: four unique numbers between 1 and 32.
const (
	NumbersPerLine = 4
	NumberMin      = 1
	NumberMax      = 32
)

// DrawDateFormat is the wire format for draw dates.
const DrawDateFormat = "2006-01-02"

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateDraw  = errors.New("draw already conducted for this date")
	ErrEntryLocked    = errors.New("entry is locked")
	ErrInvalidNumbers = errors.New("invalid line numbers")
)

// Draw is one conducted draw. Rows are append-only; at most one non-test
// draw exists per calendar date, enforced by a partial unique index.
type Draw struct {
	ID             string    `json:"id"`
	DrawDate       time.Time `json:"draw_date"`
	WinningNumbers []int     `json:"winning_numbers"`
	JackpotAmount  int64     `json:"jackpot_amount"`   // pence
	LuckyDipAmount int64     `json:"lucky_dip_amount"` // pence, per winner
	CertificateRef string    `json:"certificate_ref,omitempty"`
	IsTest         bool      `json:"is_test"`
	CreatedAt      time.Time `json:"created_at"`
}

// DateOnly normalizes a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateLine checks that numbers form a valid line: exactly NumbersPerLine
// unique integers within [NumberMin, NumberMax].
func ValidateLine(numbers []int) error {
	if len(numbers) != NumbersPerLine {
		return fmt.Errorf("%w: need exactly %d numbers", ErrInvalidNumbers, NumbersPerLine)
	}
	seen := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if n < NumberMin || n > NumberMax {
			return fmt.Errorf("%w: numbers must be between %d and %d", ErrInvalidNumbers, NumberMin, NumberMax)
		}
		if seen[n] {
			return fmt.Errorf("%w: numbers must be unique", ErrInvalidNumbers)
		}
		seen[n] = true
	}
	return nil
}
