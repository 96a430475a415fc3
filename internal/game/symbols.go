package game

import (
	"errors"
	"fmt"
	"strings"
)

// Symbol is a reel symbol.
type Symbol uint8

const (
	Symbol1x Symbol = iota
	Symbol2x
	Symbol3x
	Symbol4x
	Symbol5x
	SymbolBonus
	SymbolFree
	SymbolWild
	SymbolJackpot
	SymbolSpecial

	symbolCount
)

var symbolNames = [symbolCount]string{
	Symbol1x:      "1x",
	Symbol2x:      "2x",
	Symbol3x:      "3x",
	Symbol4x:      "4x",
	Symbol5x:      "5x",
	SymbolBonus:   "BONUS",
	SymbolFree:    "FREE",
	SymbolWild:    "WILD",
	SymbolJackpot: "JACKPOT",
	SymbolSpecial: "SPECIAL",
}

var (
	ErrUnknownSymbol   = errors.New("unknown symbol")
	ErrEmptySymbolSet  = errors.New("symbol table is empty")
	ErrNegativeWeight  = errors.New("symbol weight is negative")
	ErrDuplicateSymbol = errors.New("symbol listed twice")
	ErrZeroTotalWeight = errors.New("symbol weights sum to zero")
)

func (s Symbol) String() string {
	if s < symbolCount {
		return symbolNames[s]
	}
	return fmt.Sprintf("symbol(%d)", uint8(s))
}

// ParseSymbol accepts the display names, case-insensitively.
func ParseSymbol(name string) (Symbol, error) {
	for i, n := range symbolNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Symbol(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, name)
}

func (s Symbol) MarshalText() ([]byte, error) {
	if s >= symbolCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSymbol, uint8(s))
	}
	return []byte(symbolNames[s]), nil
}

func (s *Symbol) UnmarshalText(b []byte) error {
	parsed, err := ParseSymbol(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Multiplier returns the numeric value of 1x..5x.
func (s Symbol) Multiplier() (uint64, bool) {
	if s <= Symbol5x {
		return uint64(s) + 1, true
	}
	return 0, false
}

// SymbolWeight pairs a symbol with its selection weight.
type SymbolWeight struct {
	Symbol Symbol `yaml:"symbol" json:"symbol"`
	Weight int    `yaml:"weight" json:"weight"`
}

// DefaultSymbolWeights is the reference reel strip.
func DefaultSymbolWeights() []SymbolWeight {
	return []SymbolWeight{
		{Symbol1x, 15},
		{Symbol2x, 15},
		{Symbol3x, 12},
		{Symbol4x, 10},
		{Symbol5x, 8},
		{SymbolBonus, 10},
		{SymbolFree, 10},
		{SymbolWild, 8},
		{SymbolJackpot, 7},
		{SymbolSpecial, 5},
	}
}

// RNG is the random source used for reel draws. *rand.Rand from math/rand/v2
// satisfies it.
type RNG interface {
	IntN(n int) int
}

// SymbolTable draws symbols by cumulative-weight sampling. Iteration order is
// the order the weights were given in, so a fixed RNG yields fixed reels.
type SymbolTable struct {
	entries []SymbolWeight
	total   int
}

// NewSymbolTable validates the weights. A table that could not be sampled
// (no entries, zero total weight) is rejected here rather than at draw time.
func NewSymbolTable(weights []SymbolWeight) (*SymbolTable, error) {
	if len(weights) == 0 {
		return nil, ErrEmptySymbolSet
	}
	seen := make(map[Symbol]bool, len(weights))
	total := 0
	for _, w := range weights {
		if w.Symbol >= symbolCount {
			return nil, fmt.Errorf("%w: %d", ErrUnknownSymbol, uint8(w.Symbol))
		}
		if seen[w.Symbol] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, w.Symbol)
		}
		if w.Weight < 0 {
			return nil, fmt.Errorf("%w: %s=%d", ErrNegativeWeight, w.Symbol, w.Weight)
		}
		seen[w.Symbol] = true
		total += w.Weight
	}
	if total <= 0 {
		return nil, ErrZeroTotalWeight
	}
	entries := make([]SymbolWeight, len(weights))
	copy(entries, weights)
	return &SymbolTable{entries: entries, total: total}, nil
}

// Draw selects one symbol.
func (t *SymbolTable) Draw(rng RNG) Symbol {
	roll := rng.IntN(t.total)
	cumulative := 0
	for _, e := range t.entries {
		cumulative += e.Weight
		if roll < cumulative {
			return e.Symbol
		}
	}
	// unreachable while roll < total
	return t.entries[len(t.entries)-1].Symbol
}

// TotalWeight returns the sum of all weights.
func (t *SymbolTable) TotalWeight() int {
	return t.total
}

// Weights returns a copy of the table entries.
func (t *SymbolTable) Weights() []SymbolWeight {
	out := make([]SymbolWeight, len(t.entries))
	copy(out, t.entries)
	return out
}
