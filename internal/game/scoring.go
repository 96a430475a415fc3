package game

import (
	"fmt"
	"math"
	"math/bits"
)

// Achievement is a one-shot bonus, awarded at most once per round.
type Achievement string

const (
	AchievementFirstBumper Achievement = "first_bumper"
	AchievementFirstRamp   Achievement = "first_ramp"
	AchievementAllTargets  Achievement = "all_targets"
	AchievementComboStreak Achievement = "combo_streak"
)

const (
	eventBannerClear = "banner_clear"
	eventFeverExpiry = "fever_expiry"
)

// comboEpsilon absorbs float drift from summing many small frame deltas, so
// a window of 1.5s reads as expired after 1.5s of ticks.
const comboEpsilon = 1e-9

// Scoring converts scored events into points and tracks the combo streak,
// the session multiplier and the round's achievements.
type Scoring struct {
	score      uint64
	multiplier uint32
	combo      uint32
	comboTimer float64
	fever      bool

	unlocked map[Achievement]bool

	window      float64
	achieve     AchievementTuning
	feverTuning FeverTuning

	sched  *Scheduler
	notify Notifier
}

func NewScoring(t Tuning, sched *Scheduler, notify Notifier) *Scoring {
	if notify == nil {
		notify = nopNotifier{}
	}
	return &Scoring{
		multiplier:  1,
		unlocked:    make(map[Achievement]bool),
		window:      t.ComboWindow,
		achieve:     t.Achievements,
		feverTuning: t.Fever,
		sched:       sched,
		notify:      notify,
	}
}

// Award adds floor(base * multiplier) to the score and returns it.
func (s *Scoring) Award(base uint64) uint64 {
	actual := uint64(math.Floor(float64(base) * float64(s.multiplier)))
	s.addPoints(actual)
	return actual
}

// AddPoints adds points without applying the multiplier.
func (s *Scoring) AddPoints(points uint64) {
	s.addPoints(points)
}

func (s *Scoring) addPoints(points uint64) {
	if points == 0 {
		return
	}
	sum, carry := bits.Add64(s.score, points, 0)
	if carry != 0 {
		sum = math.MaxUint64
	}
	s.score = sum
	s.notify.Notify(Notification{Type: NoteScoreChanged, Data: ScoreChanged{Score: s.score, Delta: points}})
}

// OnEventScored extends the combo streak and restarts its window.
func (s *Scoring) OnEventScored() {
	s.combo++
	s.comboTimer = s.window
	s.notify.Notify(Notification{Type: NoteComboChanged, Data: ComboChanged{Count: s.combo}})

	if s.achieve.ComboStreak > 0 && s.combo >= s.achieve.ComboStreak {
		s.Unlock(AchievementComboStreak)
	}
	if s.feverTuning.ComboThreshold > 0 && s.combo >= s.feverTuning.ComboThreshold && !s.fever {
		s.startFever()
	}
}

// Tick runs the combo window down; at zero the streak ends.
func (s *Scoring) Tick(dt float64) {
	if s.comboTimer <= 0 {
		return
	}
	s.comboTimer -= dt
	if s.comboTimer <= comboEpsilon {
		s.comboTimer = 0
		s.combo = 0
		s.notify.Notify(Notification{Type: NoteComboChanged, Data: ComboChanged{Count: 0}})
	}
}

// SetSessionMultiplier raises the multiplier. Lower or equal values are ignored.
func (s *Scoring) SetSessionMultiplier(m uint32) bool {
	if m <= s.multiplier {
		return false
	}
	s.multiplier = m
	s.publishMultiplier()
	return true
}

func (s *Scoring) startFever() {
	s.fever = true
	if s.feverTuning.Multiplier > s.multiplier {
		s.multiplier = s.feverTuning.Multiplier
	}
	s.banner(fmt.Sprintf("FEVER x%d", s.feverTuning.Multiplier), ColorMega)
	s.publishMultiplier()
	s.sched.After(s.feverTuning.Duration, eventFeverExpiry, s.endFever)
}

// endFever is the one path that lowers the multiplier during a round.
func (s *Scoring) endFever() {
	if !s.fever {
		return
	}
	s.fever = false
	s.multiplier = 1
	s.publishMultiplier()
}

// Unlock awards an achievement once per round. It reports whether the
// achievement was newly unlocked.
func (s *Scoring) Unlock(a Achievement) bool {
	if s.unlocked[a] {
		return false
	}
	s.unlocked[a] = true

	var bonus uint64
	var text string
	switch a {
	case AchievementFirstBumper:
		bonus, text = s.achieve.FirstBumperBonus, "FIRST BUMPER!"
	case AchievementFirstRamp:
		bonus, text = s.achieve.FirstRampBonus, "RAMP COMPLETE!"
	case AchievementAllTargets:
		bonus, text = s.achieve.AllTargetsBonus, "ALL TARGETS!"
	case AchievementComboStreak:
		bonus, text = s.achieve.ComboStreakBonus, fmt.Sprintf("%d COMBO!", s.achieve.ComboStreak)
	}
	actual := s.Award(bonus)
	s.banner(fmt.Sprintf("%s +%d", text, actual), ColorReward)
	return true
}

// banner shows text and schedules it to clear.
func (s *Scoring) banner(text, color string) {
	s.notify.Notify(Notification{Type: NoteBanner, Data: Banner{Text: text, Color: color}})
	s.sched.Cancel(eventBannerClear)
	s.sched.After(s.achieve.BannerDuration, eventBannerClear, func() {
		s.notify.Notify(Notification{Type: NoteBanner, Data: Banner{}})
	})
}

// Reset starts a new round: score, combo, multiplier, fever and achievements.
func (s *Scoring) Reset() {
	s.score = 0
	s.combo = 0
	s.comboTimer = 0
	s.multiplier = 1
	s.fever = false
	clear(s.unlocked)
	s.notify.Notify(Notification{Type: NoteScoreChanged, Data: ScoreChanged{Score: 0}})
	s.notify.Notify(Notification{Type: NoteComboChanged, Data: ComboChanged{Count: 0}})
	s.publishMultiplier()
}

func (s *Scoring) publishMultiplier() {
	s.notify.Notify(Notification{Type: NoteMultiplier, Data: MultiplierChanged{Multiplier: s.multiplier, Fever: s.fever}})
}

func (s *Scoring) Score() uint64               { return s.score }
func (s *Scoring) Multiplier() uint32          { return s.multiplier }
func (s *Scoring) Combo() uint32               { return s.combo }
func (s *Scoring) ComboTimer() float64         { return s.comboTimer }
func (s *Scoring) Fever() bool                 { return s.fever }
func (s *Scoring) Unlocked(a Achievement) bool { return s.unlocked[a] }
