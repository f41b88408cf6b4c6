package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelbrookafc/clubdraw/internal/models"
)

func newWinnerRepoMock(t *testing.T) (*WinnerRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWinnerRepo(db), mock
}

func TestWinnerRepo_SaveResultsSkipsNonWinners(t *testing.T) {
	repo, mock := newWinnerRepoMock(t)

	// Three results, one of them no-win: exactly two inserts in one tx.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO draw_winners").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO draw_winners").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveResults(context.Background(), "draw-1", testDate, []models.Result{
		{EntryID: "e1", SubscriberID: "s1", Numbers: []int{3, 9, 17, 30}, Matches: 4, Tier: models.TierJackpot, PrizeAmount: 50000},
		{EntryID: "e2", SubscriberID: "s2", Numbers: []int{1, 2, 4, 5}, Matches: 1, Tier: models.TierNone},
		{EntryID: "e3", SubscriberID: "s3", Numbers: []int{6, 7, 8, 10}, Matches: 0, Tier: models.TierLuckyDip, PrizeAmount: 1000},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWinnerRepo_SaveResultsRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newWinnerRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO draw_winners").
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	err := repo.SaveResults(context.Background(), "draw-1", testDate, []models.Result{
		{EntryID: "e1", SubscriberID: "s1", Numbers: []int{3, 9, 17, 30}, Matches: 4, Tier: models.TierJackpot, PrizeAmount: 50000},
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWinnerRepo_FindByDrawDate(t *testing.T) {
	repo, mock := newWinnerRepoMock(t)

	rows := sqlmock.NewRows([]string{"entry_id", "subscriber_id", "numbers", "matches", "tier", "prize_amount"}).
		AddRow("e1", "s1", "{3,9,17,30}", 4, "jackpot", int64(50000)).
		AddRow("e3", "s3", "{6,7,8,10}", 0, "lucky_dip", int64(1000))

	mock.ExpectQuery("SELECT (.+) FROM draw_winners").
		WithArgs(testDate).
		WillReturnRows(rows)

	results, err := repo.FindByDrawDate(context.Background(), testDate)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.TierJackpot, results[0].Tier)
	assert.Equal(t, []int{3, 9, 17, 30}, results[0].Numbers)
	assert.Equal(t, models.TierLuckyDip, results[1].Tier)
	assert.NoError(t, mock.ExpectationsWereMet())
}
