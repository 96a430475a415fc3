package game

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// PayoutTier names the payout-table row that matched.
type PayoutTier string

const (
	TierMegaJackpot PayoutTier = "mega_jackpot"
	TierBonus       PayoutTier = "bonus"
	TierFree        PayoutTier = "free"
	TierMultiplier  PayoutTier = "multiplier"
	TierJackpotWild PayoutTier = "jackpot_wild"
	TierThreeOfKind PayoutTier = "three_of_a_kind"
	TierConsolation PayoutTier = "consolation"
)

// PayoutResult is created per spin and consumed once.
type PayoutResult struct {
	Tier            PayoutTier `json:"tier"`
	IsWin           bool       `json:"is_win"`
	IsMegaWin       bool       `json:"is_mega_win"`
	FreeBalls       uint32     `json:"free_balls"`
	Points          uint64     `json:"points"`
	MultiplierBonus uint32     `json:"multiplier_bonus"`
	UnlockRapidFire bool       `json:"unlock_rapid_fire"`
}

// Reward is a flat award of balls and points.
type Reward struct {
	FreeBalls uint32 `yaml:"free_balls" json:"free_balls"`
	Points    uint64 `yaml:"points" json:"points"`
}

// PayoutTable holds the flat awards for each tier. The numeric tier is
// computed from the pre-spin score instead.
type PayoutTable struct {
	MegaJackpot     Reward `yaml:"mega_jackpot"`
	Bonus           Reward `yaml:"bonus"`
	Free            Reward `yaml:"free"`
	JackpotWild     Reward `yaml:"jackpot_wild"`
	ThreeOfKind     Reward `yaml:"three_of_a_kind"`
	Consolation     Reward `yaml:"consolation"`
	MultiplierBalls uint32 `yaml:"multiplier_free_balls"`
	MegaProduct     uint64 `yaml:"mega_product"`
	MegaMultiplier  uint32 `yaml:"mega_multiplier_bonus"`
}

var ErrEmptyConsolation = errors.New("consolation payout must award balls or points")

func DefaultPayoutTable() PayoutTable {
	return PayoutTable{
		MegaJackpot:    Reward{FreeBalls: 500, Points: 50000},
		Bonus:          Reward{FreeBalls: 100, Points: 10000},
		Free:           Reward{FreeBalls: 200, Points: 5000},
		JackpotWild:    Reward{FreeBalls: 100, Points: 20000},
		ThreeOfKind:    Reward{FreeBalls: 50, Points: 2500},
		Consolation:    Reward{FreeBalls: 5, Points: 500},
		MegaProduct:    60,
		MegaMultiplier: 2,
	}
}

func (pt PayoutTable) Validate() error {
	if pt.Consolation.FreeBalls == 0 && pt.Consolation.Points == 0 {
		return ErrEmptyConsolation
	}
	if pt.MegaProduct == 0 {
		return fmt.Errorf("mega product threshold must be positive")
	}
	return nil
}

// Evaluate matches the reels against the table in priority order; the first
// matching row wins.
func (pt PayoutTable) Evaluate(reels [3]Symbol, preSpinScore uint64) PayoutResult {
	switch {
	case allOf(reels, SymbolJackpot):
		return PayoutResult{
			Tier: TierMegaJackpot, IsWin: true, IsMegaWin: true,
			FreeBalls: pt.MegaJackpot.FreeBalls, Points: pt.MegaJackpot.Points,
			MultiplierBonus: pt.MegaMultiplier,
		}
	case allOf(reels, SymbolBonus):
		return PayoutResult{
			Tier: TierBonus, IsWin: true,
			FreeBalls: pt.Bonus.FreeBalls, Points: pt.Bonus.Points,
			UnlockRapidFire: true,
		}
	case allOf(reels, SymbolFree):
		return PayoutResult{
			Tier: TierFree, IsWin: true,
			FreeBalls: pt.Free.FreeBalls, Points: pt.Free.Points,
		}
	}

	if product, ok := multiplierProduct(reels); ok {
		return PayoutResult{
			Tier: TierMultiplier, IsWin: true,
			IsMegaWin: product >= pt.MegaProduct,
			FreeBalls: pt.MultiplierBalls,
			Points:    saturatingMul(preSpinScore, product),
		}
	}

	if jackpotOrWild(reels) {
		return PayoutResult{
			Tier: TierJackpotWild, IsWin: true,
			FreeBalls: pt.JackpotWild.FreeBalls, Points: pt.JackpotWild.Points,
		}
	}

	if threeOfAKind(reels) {
		return PayoutResult{
			Tier: TierThreeOfKind, IsWin: true,
			FreeBalls: pt.ThreeOfKind.FreeBalls, Points: pt.ThreeOfKind.Points,
		}
	}

	return PayoutResult{
		Tier:      TierConsolation,
		FreeBalls: pt.Consolation.FreeBalls, Points: pt.Consolation.Points,
	}
}

func allOf(reels [3]Symbol, s Symbol) bool {
	return reels[0] == s && reels[1] == s && reels[2] == s
}

func multiplierProduct(reels [3]Symbol) (uint64, bool) {
	product := uint64(1)
	for _, s := range reels {
		m, ok := s.Multiplier()
		if !ok {
			return 0, false
		}
		product *= m
	}
	return product, true
}

// jackpotOrWild: at least two reels are JACKPOT or WILD and at least one is a
// literal JACKPOT.
func jackpotOrWild(reels [3]Symbol) bool {
	matches, literal := 0, false
	for _, s := range reels {
		switch s {
		case SymbolJackpot:
			matches++
			literal = true
		case SymbolWild:
			matches++
		}
	}
	return matches >= 2 && literal
}

// threeOfAKind counts every symbol, then adds the WILD count to each other
// symbol present on the reels.
func threeOfAKind(reels [3]Symbol) bool {
	var counts [symbolCount]int
	for _, s := range reels {
		counts[s]++
	}
	wilds := counts[SymbolWild]
	for s, c := range counts {
		if c == 0 {
			continue
		}
		if Symbol(s) != SymbolWild {
			c += wilds
		}
		if c >= 3 {
			return true
		}
	}
	return false
}

// saturatingMul multiplies a and b, clamping at math.MaxUint64.
func saturatingMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
