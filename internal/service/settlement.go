package service

import (
	"math/rand"
	"time"

	"github.com/kelbrookafc/clubdraw/internal/models"
)

// DefaultLuckyDipQuota is how many zero-match lines win a lucky dip prize.
const DefaultLuckyDipQuota = 5

// SettlementEngine classifies a draw's entries into prize tiers. Lucky dip
// winners are picked at random among zero-match entries only, which keeps the
// tiers disjoint: a line matching 1-3 numbers wins nothing.
type SettlementEngine struct {
	quota int
	rng   *rand.Rand
}

// NewSettlementEngine builds an engine with the given lucky-dip quota. The
// rng is injectable for deterministic tests; nil means time-seeded.
func NewSettlementEngine(quota int, rng *rand.Rand) *SettlementEngine {
	if quota <= 0 {
		quota = DefaultLuckyDipQuota
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SettlementEngine{quota: quota, rng: rng}
}

// Settle evaluates every active entry against the draw's winning numbers.
// Inactive entries are skipped entirely. Zero entries is not an error; the
// settlement is just empty.
func (e *SettlementEngine) Settle(draw *models.Draw, entries []models.Entry) *models.Settlement {
	winning := make(map[int]bool, len(draw.WinningNumbers))
	for _, n := range draw.WinningNumbers {
		winning[n] = true
	}

	var (
		results    []models.Result
		jackpotIdx []int
		zeroIdx    []int
	)
	for _, entry := range entries {
		if !entry.Active {
			continue
		}

		matches := 0
		for _, n := range entry.Numbers {
			if winning[n] {
				matches++
			}
		}

		res := models.Result{
			EntryID:      entry.ID,
			SubscriberID: entry.SubscriberID,
			Numbers:      entry.Numbers,
			Matches:      matches,
			Tier:         models.TierNone,
		}
		switch {
		case matches == models.NumbersPerLine:
			res.Tier = models.TierJackpot
			jackpotIdx = append(jackpotIdx, len(results))
		case matches == 0:
			zeroIdx = append(zeroIdx, len(results))
		}
		results = append(results, res)
	}

	// Jackpot splits evenly across simultaneous winners. Zero winners means
	// the pot carries over; that is operated upstream, not recomputed here.
	if len(jackpotIdx) > 0 {
		share := draw.JackpotAmount / int64(len(jackpotIdx))
		for _, idx := range jackpotIdx {
			results[idx].PrizeAmount = share
		}
	}

	// Lucky dip: uniform pick without replacement from zero-match lines. If
	// fewer are eligible than the quota, they all win.
	e.rng.Shuffle(len(zeroIdx), func(i, j int) {
		zeroIdx[i], zeroIdx[j] = zeroIdx[j], zeroIdx[i]
	})
	dips := e.quota
	if len(zeroIdx) < dips {
		dips = len(zeroIdx)
	}
	for _, idx := range zeroIdx[:dips] {
		results[idx].Tier = models.TierLuckyDip
		results[idx].PrizeAmount = draw.LuckyDipAmount
	}

	return &models.Settlement{
		Results:         results,
		JackpotWinners:  len(jackpotIdx),
		LuckyDipWinners: dips,
	}
}
