package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelbrookafc/clubdraw/internal/models"
)

func testDraw(winning []int) *models.Draw {
	return &models.Draw{
		ID:             "draw-1",
		DrawDate:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		WinningNumbers: winning,
		JackpotAmount:  50000,
		LuckyDipAmount: 1000,
	}
}

func activeEntry(id string, numbers []int) models.Entry {
	return models.Entry{
		ID:           id,
		SubscriberID: "sub-" + id,
		Numbers:      numbers,
		Active:       true,
	}
}

func newTestEngine(quota int) *SettlementEngine {
	return NewSettlementEngine(quota, rand.New(rand.NewSource(1)))
}

func TestSettle_FullMatchWinsJackpot(t *testing.T) {
	engine := newTestEngine(5)
	draw := testDraw([]int{3, 9, 17, 30})
	entries := []models.Entry{activeEntry("e1", []int{3, 9, 17, 30})}

	st := engine.Settle(draw, entries)

	require.Len(t, st.Results, 1)
	assert.Equal(t, 4, st.Results[0].Matches)
	assert.Equal(t, models.TierJackpot, st.Results[0].Tier)
	assert.Equal(t, int64(50000), st.Results[0].PrizeAmount)
	assert.Equal(t, 1, st.JackpotWinners)
	assert.Equal(t, 0, st.LuckyDipWinners)
}

func TestSettle_PartialMatchWinsNothing(t *testing.T) {
	engine := newTestEngine(5)
	draw := testDraw([]int{3, 9, 17, 30})
	entries := []models.Entry{activeEntry("e1", []int{1, 2, 3, 4})}

	st := engine.Settle(draw, entries)

	require.Len(t, st.Results, 1)
	assert.Equal(t, 1, st.Results[0].Matches)
	// Lucky dip covers zero-match lines only, so one match wins nothing.
	assert.Equal(t, models.TierNone, st.Results[0].Tier)
	assert.Zero(t, st.Results[0].PrizeAmount)
	assert.Equal(t, 0, st.LuckyDipWinners)
}

func TestSettle_LuckyDipQuota(t *testing.T) {
	engine := newTestEngine(5)
	draw := testDraw([]int{3, 9, 17, 30})

	// Ten zero-match lines.
	var entries []models.Entry
	lines := [][]int{
		{1, 2, 4, 5}, {6, 7, 8, 10}, {11, 12, 13, 14}, {15, 16, 18, 19},
		{20, 21, 22, 23}, {24, 25, 26, 27}, {28, 29, 31, 32}, {1, 6, 11, 15},
		{2, 7, 12, 16}, {4, 8, 13, 18},
	}
	for i, line := range lines {
		entries = append(entries, activeEntry(string(rune('a'+i)), line))
	}

	st := engine.Settle(draw, entries)

	require.Len(t, st.Results, 10)
	assert.Equal(t, 5, st.LuckyDipWinners)

	dips, none := 0, 0
	seen := make(map[string]bool)
	for _, res := range st.Results {
		switch res.Tier {
		case models.TierLuckyDip:
			dips++
			assert.Equal(t, int64(1000), res.PrizeAmount)
			assert.False(t, seen[res.EntryID], "entry selected twice")
			seen[res.EntryID] = true
		case models.TierNone:
			none++
			assert.Zero(t, res.PrizeAmount)
		default:
			t.Fatalf("unexpected tier %s", res.Tier)
		}
	}
	assert.Equal(t, 5, dips)
	assert.Equal(t, 5, none)
}

func TestSettle_FewerEligibleThanQuota(t *testing.T) {
	engine := newTestEngine(5)
	draw := testDraw([]int{3, 9, 17, 30})
	entries := []models.Entry{
		activeEntry("e1", []int{1, 2, 4, 5}),
		activeEntry("e2", []int{6, 7, 8, 10}),
	}

	st := engine.Settle(draw, entries)

	assert.Equal(t, 2, st.LuckyDipWinners)
	for _, res := range st.Results {
		assert.Equal(t, models.TierLuckyDip, res.Tier)
	}
}

func TestSettle_JackpotSplitsEvenly(t *testing.T) {
	engine := newTestEngine(5)
	draw := testDraw([]int{3, 9, 17, 30})
	entries := []models.Entry{
		activeEntry("e1", []int{3, 9, 17, 30}),
		activeEntry("e2", []int{3, 9, 17, 30}),
	}

	st := engine.Settle(draw, entries)

	assert.Equal(t, 2, st.JackpotWinners)
	for _, res := range st.Results {
		assert.Equal(t, models.TierJackpot, res.Tier)
		assert.Equal(t, int64(25000), res.PrizeAmount)
	}
}

func TestSettle_InactiveEntriesExcluded(t *testing.T) {
	engine := newTestEngine(5)
	draw := testDraw([]int{3, 9, 17, 30})
	inactive := activeEntry("e1", []int{3, 9, 17, 30})
	inactive.Active = false
	entries := []models.Entry{inactive, activeEntry("e2", []int{1, 2, 4, 5})}

	st := engine.Settle(draw, entries)

	require.Len(t, st.Results, 1)
	assert.Equal(t, "e2", st.Results[0].EntryID)
	assert.Equal(t, 0, st.JackpotWinners)
}

func TestSettle_NoEntries(t *testing.T) {
	engine := newTestEngine(5)
	st := engine.Settle(testDraw([]int{3, 9, 17, 30}), nil)

	assert.Empty(t, st.Results)
	assert.Equal(t, 0, st.JackpotWinners)
	assert.Equal(t, 0, st.LuckyDipWinners)
}

func TestSettle_TiersAreDisjoint(t *testing.T) {
	engine := newTestEngine(5)
	draw := testDraw([]int{3, 9, 17, 30})
	entries := []models.Entry{
		activeEntry("jackpot", []int{3, 9, 17, 30}),
		activeEntry("partial", []int{3, 1, 2, 4}),
		activeEntry("zero1", []int{1, 2, 4, 5}),
		activeEntry("zero2", []int{6, 7, 8, 10}),
	}

	st := engine.Settle(draw, entries)

	tiers := make(map[string]models.Tier)
	for _, res := range st.Results {
		if prev, ok := tiers[res.EntryID]; ok {
			t.Fatalf("entry %s classified twice: %s and %s", res.EntryID, prev, res.Tier)
		}
		tiers[res.EntryID] = res.Tier
		assert.GreaterOrEqual(t, res.Matches, 0)
		assert.LessOrEqual(t, res.Matches, models.NumbersPerLine)
	}
	assert.Equal(t, models.TierJackpot, tiers["jackpot"])
	assert.Equal(t, models.TierNone, tiers["partial"])
	assert.Equal(t, models.TierLuckyDip, tiers["zero1"])
	assert.Equal(t, models.TierLuckyDip, tiers["zero2"])
}
