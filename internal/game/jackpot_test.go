package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	score   uint64
	applied []PayoutResult
}

func (f *fakeSink) CurrentScore() uint64       { return f.score }
func (f *fakeSink) ApplyPayout(r PayoutResult) { f.applied = append(f.applied, r) }

func newTestJackpot(t *testing.T, tun Tuning, rng RNG) (*Jackpot, *Scheduler, *fakeSink, *recorder) {
	t.Helper()
	symbols, err := NewSymbolTable(tun.Symbols)
	require.NoError(t, err)
	sched := NewScheduler()
	sink := &fakeSink{}
	rec := &recorder{}
	return NewJackpot(tun, symbols, rng, sched, sink, rec, nil), sched, sink, rec
}

func TestJackpot_ThresholdStartsCountdown(t *testing.T) {
	j, _, _, rec := newTestJackpot(t, DefaultTuning(), reelRNG(Symbol1x))
	assert.Equal(t, JackpotIdle, j.Phase())

	for range 9 {
		require.True(t, j.AddBall())
	}
	assert.Equal(t, JackpotAccumulating, j.Phase())
	assert.Empty(t, rec.ofType(NoteJackpotReady))

	j.AddBall()
	assert.Equal(t, JackpotReadyCountdown, j.Phase())
	assert.Equal(t, 5.0, j.Countdown())
	require.Len(t, rec.ofType(NoteJackpotReady), 1)
}

func TestJackpot_SpinBelowThresholdIsNoop(t *testing.T) {
	j, sched, sink, _ := newTestJackpot(t, quickTuning(), reelRNG(Symbol1x))
	j.AddBall()
	assert.False(t, j.TriggerSpin())
	sched.RunDue()
	assert.Equal(t, JackpotAccumulating, j.Phase())
	assert.Empty(t, sink.applied)
}

func TestJackpot_CountdownAutoSpins(t *testing.T) {
	j, _, _, rec := newTestJackpot(t, DefaultTuning(), reelRNG(SymbolBonus, SymbolFree, SymbolSpecial))
	for range 10 {
		j.AddBall()
	}

	j.Tick(4.5)
	assert.Equal(t, JackpotReadyCountdown, j.Phase())
	j.Tick(0.5)
	assert.Equal(t, JackpotSpinning, j.Phase())
	assert.Len(t, rec.ofType(NoteReelSpin), 3)

	seconds := []int{}
	for _, n := range rec.ofType(NoteJackpotCountdown) {
		seconds = append(seconds, n.Data.(JackpotCountdown).Seconds)
	}
	assert.Equal(t, []int{1}, seconds)
}

func TestJackpot_ReelsStopStaggered(t *testing.T) {
	j, sched, sink, rec := newTestJackpot(t, DefaultTuning(), reelRNG(Symbol2x, Symbol3x, Symbol5x))
	sink.score = 1000
	for range 10 {
		j.AddBall()
	}
	require.True(t, j.TriggerSpin())
	assert.False(t, j.TriggerSpin(), "already spinning")

	sched.Advance(0.99)
	sched.RunDue()
	assert.Empty(t, rec.ofType(NoteReelStop))

	sched.Advance(1.0)
	sched.RunDue()
	require.Len(t, rec.ofType(NoteReelStop), 1)

	sched.Advance(1.5)
	sched.RunDue()
	require.Len(t, rec.ofType(NoteReelStop), 2)
	assert.Empty(t, sink.applied)

	sched.Advance(2.0)
	sched.RunDue()
	stops := rec.ofType(NoteReelStop)
	require.Len(t, stops, 3)
	assert.Equal(t, ReelStop{Index: 2, Symbol: Symbol5x}, stops[2].Data)

	assert.Equal(t, JackpotEvaluated, j.Phase())
	require.Len(t, sink.applied, 1)
	assert.Equal(t, uint64(30000), sink.applied[0].Points)
	assert.False(t, sink.applied[0].IsMegaWin)
}

func TestJackpot_PreSpinScoreIsCapturedAtSpinStart(t *testing.T) {
	j, sched, sink, _ := newTestJackpot(t, DefaultTuning(), reelRNG(Symbol2x, Symbol3x, Symbol5x))
	sink.score = 1000
	for range 10 {
		j.AddBall()
	}
	j.TriggerSpin()
	sink.score = 999999

	sched.Advance(2)
	sched.RunDue()
	require.Len(t, sink.applied, 1)
	assert.Equal(t, uint64(30000), sink.applied[0].Points)
}

func TestJackpot_LockoutPausesChuteThenResets(t *testing.T) {
	j, sched, sink, _ := newTestJackpot(t, DefaultTuning(), reelRNG(SymbolWild, SymbolWild, SymbolBonus))
	for range 10 {
		j.AddBall()
	}
	j.TriggerSpin()

	sched.Advance(2)
	sched.RunDue()
	require.Len(t, sink.applied, 1)
	assert.Equal(t, TierThreeOfKind, sink.applied[0].Tier)

	assert.True(t, j.AddBall(), "evaluated machine still counts")
	assert.Equal(t, 11, j.Chute(), "chute is not reset by the spin itself")

	sched.Advance(5)
	sched.RunDue()
	assert.Equal(t, JackpotPayoutLockout, j.Phase())
	assert.False(t, j.AddBall())
	assert.Equal(t, 11, j.Chute())

	sched.Advance(7)
	sched.RunDue()
	assert.Equal(t, JackpotIdle, j.Phase())
	assert.Equal(t, 0, j.Chute())
}

func TestJackpot_ZeroDurationsResolveInOnePass(t *testing.T) {
	j, sched, sink, _ := newTestJackpot(t, quickTuning(), reelRNG(SymbolJackpot, SymbolJackpot, SymbolJackpot))
	for range 10 {
		j.AddBall()
	}
	require.True(t, j.TriggerSpin())
	sched.RunDue()

	require.Len(t, sink.applied, 1)
	assert.Equal(t, TierMegaJackpot, sink.applied[0].Tier)
	assert.Equal(t, JackpotIdle, j.Phase())
	assert.Equal(t, 0, j.Chute())
}

func TestJackpot_ResetDropsSpinInProgress(t *testing.T) {
	j, sched, sink, _ := newTestJackpot(t, DefaultTuning(), reelRNG(SymbolFree, SymbolFree, SymbolFree))
	for range 10 {
		j.AddBall()
	}
	j.TriggerSpin()
	sched.Advance(1.2)
	sched.RunDue()

	j.Reset()
	sched.Advance(10)
	sched.RunDue()

	assert.Empty(t, sink.applied)
	assert.Equal(t, JackpotIdle, j.Phase())
	_, resolved := j.Reels()
	assert.Equal(t, [3]bool{}, resolved)
}

func TestJackpot_PhaseCallback(t *testing.T) {
	j, sched, _, _ := newTestJackpot(t, quickTuning(), reelRNG(Symbol1x))
	var phases []JackpotPhase
	j.onPhase = func(_, to JackpotPhase) { phases = append(phases, to) }

	for range 10 {
		j.AddBall()
	}
	j.TriggerSpin()
	sched.RunDue()

	assert.Equal(t, []JackpotPhase{
		JackpotAccumulating,
		JackpotReadyCountdown,
		JackpotSpinning,
		JackpotEvaluated,
		JackpotPayoutLockout,
		JackpotIdle,
	}, phases)
}
