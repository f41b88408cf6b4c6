package models

// Prize tiers. Each entry lands in exactly one tier per draw.
type Tier string

const (
	TierJackpot  Tier = "jackpot"
	TierLuckyDip Tier = "lucky_dip"
	TierNone     Tier = "no_win"
)

// Result classifies one entry against a draw.
type Result struct {
	EntryID      string `json:"entry_id"`
	SubscriberID string `json:"subscriber_id"`
	Numbers      []int  `json:"numbers"`
	Matches      int    `json:"matches"`
	Tier         Tier   `json:"tier"`
	PrizeAmount  int64  `json:"prize_amount"`
}

// IsWinner reports whether the result carries a prize.
func (r Result) IsWinner() bool {
	return r.Tier == TierJackpot || r.Tier == TierLuckyDip
}

// Settlement is the full outcome of classifying a draw's entries.
type Settlement struct {
	Results         []Result `json:"results"`
	JackpotWinners  int      `json:"jackpot_winners"`
	LuckyDipWinners int      `json:"lucky_dip_winners"`
}

// Winners returns only the prize-winning results.
func (s *Settlement) Winners() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.IsWinner() {
			out = append(out, r)
		}
	}
	return out
}
