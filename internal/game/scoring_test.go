package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScoring(t *testing.T) (*Scoring, *Scheduler, *recorder) {
	t.Helper()
	sched := NewScheduler()
	rec := &recorder{}
	return NewScoring(DefaultTuning(), sched, rec), sched, rec
}

func TestScoring_AwardAppliesMultiplier(t *testing.T) {
	s, _, _ := newTestScoring(t)
	assert.Equal(t, uint64(50), s.Award(50))

	require.True(t, s.SetSessionMultiplier(3))
	assert.Equal(t, uint64(150), s.Award(50))
	assert.Equal(t, uint64(200), s.Score())

	s.AddPoints(1000)
	assert.Equal(t, uint64(1200), s.Score())
}

func TestScoring_MultiplierOnlyRatchetsUp(t *testing.T) {
	s, _, _ := newTestScoring(t)
	assert.True(t, s.SetSessionMultiplier(4))
	assert.False(t, s.SetSessionMultiplier(2))
	assert.False(t, s.SetSessionMultiplier(4))
	assert.Equal(t, uint32(4), s.Multiplier())

	s.Reset()
	assert.Equal(t, uint32(1), s.Multiplier())
}

func TestScoring_ComboDecaysAfterWindow(t *testing.T) {
	s, _, rec := newTestScoring(t)
	s.OnEventScored()
	require.Equal(t, uint32(1), s.Combo())

	for range 14 {
		s.Tick(0.1)
	}
	assert.Equal(t, uint32(1), s.Combo(), "still inside the window at t=1.4")

	s.Tick(0.1)
	assert.Equal(t, uint32(0), s.Combo(), "expired at t=1.5")
	assert.Zero(t, s.ComboTimer())

	last := rec.ofType(NoteComboChanged)
	assert.Equal(t, ComboChanged{Count: 0}, last[len(last)-1].Data)
}

func TestScoring_ComboDecayUnevenFrames(t *testing.T) {
	s, _, _ := newTestScoring(t)
	s.OnEventScored()
	s.OnEventScored()

	s.Tick(1.49)
	assert.Equal(t, uint32(2), s.Combo())
	s.Tick(0.01)
	assert.Equal(t, uint32(0), s.Combo())
}

func TestScoring_EventRestartsWindow(t *testing.T) {
	s, _, _ := newTestScoring(t)
	s.OnEventScored()
	s.Tick(1.0)
	s.OnEventScored()
	s.Tick(1.0)
	assert.Equal(t, uint32(2), s.Combo())
	assert.InDelta(t, 0.5, s.ComboTimer(), 1e-9)
}

func TestScoring_AchievementsFireOnce(t *testing.T) {
	s, _, rec := newTestScoring(t)
	assert.True(t, s.Unlock(AchievementFirstBumper))
	assert.False(t, s.Unlock(AchievementFirstBumper))
	assert.Equal(t, uint64(1000), s.Score())
	assert.Equal(t, []string{"FIRST BUMPER! +1000"}, rec.banners())

	s.Reset()
	assert.False(t, s.Unlocked(AchievementFirstBumper))
	assert.True(t, s.Unlock(AchievementFirstBumper))
}

func TestScoring_BannerClearsAfterDuration(t *testing.T) {
	s, sched, rec := newTestScoring(t)
	s.Unlock(AchievementFirstRamp)

	sched.Advance(1.9)
	sched.RunDue()
	last := rec.ofType(NoteBanner)
	assert.NotEmpty(t, last[len(last)-1].Data.(Banner).Text)

	sched.Advance(2.0)
	sched.RunDue()
	last = rec.ofType(NoteBanner)
	assert.Empty(t, last[len(last)-1].Data.(Banner).Text)
}

func TestScoring_ComboStreakAndFever(t *testing.T) {
	s, sched, _ := newTestScoring(t)

	for range 10 {
		s.OnEventScored()
	}
	assert.True(t, s.Unlocked(AchievementComboStreak))
	assert.Equal(t, uint64(2000), s.Score())

	for range 15 {
		s.OnEventScored()
	}
	require.True(t, s.Fever())
	assert.Equal(t, uint32(3), s.Multiplier())

	sched.Advance(10)
	sched.RunDue()
	assert.False(t, s.Fever())
	assert.Equal(t, uint32(1), s.Multiplier(), "fever expiry lowers the multiplier")
}

func TestScoring_FeverKeepsHigherMultiplier(t *testing.T) {
	s, _, _ := newTestScoring(t)
	s.SetSessionMultiplier(5)
	for range 25 {
		s.OnEventScored()
	}
	assert.True(t, s.Fever())
	assert.Equal(t, uint32(5), s.Multiplier())
}

func TestScoring_AddPointsSaturates(t *testing.T) {
	s, _, _ := newTestScoring(t)
	s.AddPoints(math.MaxUint64 - 10)
	s.AddPoints(100)
	assert.Equal(t, uint64(math.MaxUint64), s.Score())
}
