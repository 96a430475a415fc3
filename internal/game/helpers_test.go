package game

import (
	"context"
	"slices"
	"sync"
)

type fakePhysics struct {
	placed   map[BallHandle]Vec2
	parked   map[BallHandle]int
	flippers [2]bool
	pending  []Contact
}

func newFakePhysics() *fakePhysics {
	return &fakePhysics{
		placed: make(map[BallHandle]Vec2),
		parked: make(map[BallHandle]int),
	}
}

func (f *fakePhysics) Step(float64) []Contact {
	out := f.pending
	f.pending = nil
	return out
}

func (f *fakePhysics) PlaceBall(h BallHandle, pos, _ Vec2) { f.placed[h] = pos }
func (f *fakePhysics) ParkBall(h BallHandle)               { f.parked[h]++ }
func (f *fakePhysics) SetFlipper(side Side, active bool)   { f.flippers[side] = active }

// queue makes the next Step report contacts between ball h and body of tag.
func (f *fakePhysics) queue(h BallHandle, tag Tag, body Body) {
	f.pending = append(f.pending, Contact{TagA: TagBall, BodyA: Body(h), TagB: tag, BodyB: body})
}

type recorder struct {
	notes []Notification
}

func (r *recorder) Notify(n Notification) { r.notes = append(r.notes, n) }

func (r *recorder) ofType(t NotificationType) []Notification {
	var out []Notification
	for _, n := range r.notes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) banners() []string {
	var out []string
	for _, n := range r.ofType(NoteBanner) {
		if b := n.Data.(Banner); b.Text != "" {
			out = append(out, b.Text)
		}
	}
	return out
}

// scriptedRNG replays fixed rolls.
type scriptedRNG struct {
	rolls []int
	i     int
}

func (s *scriptedRNG) IntN(n int) int {
	v := s.rolls[s.i%len(s.rolls)] % n
	s.i++
	return v
}

// rollFor returns a roll that lands on sym under DefaultSymbolWeights.
func rollFor(sym Symbol) int {
	cumulative := 0
	for _, w := range DefaultSymbolWeights() {
		if w.Symbol == sym {
			return cumulative
		}
		cumulative += w.Weight
	}
	panic("symbol not in default table")
}

func reelRNG(reels ...Symbol) *scriptedRNG {
	rng := &scriptedRNG{}
	for _, s := range reels {
		rng.rolls = append(rng.rolls, rollFor(s))
	}
	return rng
}

// quickTuning keeps the auto-spin countdown but resolves a triggered spin
// within one frame.
func quickTuning() Tuning {
	t := DefaultTuning()
	t.SpinDuration = 0
	t.PayoutDisplay = 0
	t.PayoutLockout = 0
	return t
}

type memHighScores struct {
	mu      sync.Mutex
	entries []HighScoreEntry
}

func (m *memHighScores) scores() []uint64 {
	out := make([]uint64, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Score
	}
	return out
}

func (m *memHighScores) IsHighScore(_ context.Context, score uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Qualifies(m.scores(), score), nil
}

func (m *memHighScores) AddHighScore(_ context.Context, e HighScoreEntry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !Qualifies(m.scores(), e.Score) {
		return 0, nil
	}
	i, _ := slices.BinarySearchFunc(m.entries, e.Score, func(x HighScoreEntry, s uint64) int {
		if x.Score >= s {
			return -1
		}
		return 1
	})
	m.entries = slices.Insert(m.entries, i, e)
	if len(m.entries) > MaxHighScores {
		m.entries = m.entries[:MaxHighScores]
	}
	return i + 1, nil
}

func (m *memHighScores) TopScores(_ context.Context, limit int) ([]HighScoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries[:min(limit, len(m.entries))]), nil
}

type memSettings map[string]string

func (m memSettings) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memSettings) Set(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}
