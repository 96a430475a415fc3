package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the static configuration of a session. Times are in seconds.
type Tuning struct {
	InitialBalls   int     `yaml:"initial_balls"`
	MaxActiveBalls int     `yaml:"max_active_balls"`
	MaxFrameDelta  float64 `yaml:"max_frame_delta"`

	ChuteThreshold int     `yaml:"chute_threshold"`
	AutoSpinDelay  float64 `yaml:"auto_spin_delay"`
	SpinDuration   float64 `yaml:"spin_duration"`
	PayoutDisplay  float64 `yaml:"payout_display"`
	PayoutLockout  float64 `yaml:"payout_lockout"`

	ComboWindow    float64 `yaml:"combo_window"`
	BumperCooldown float64 `yaml:"bumper_cooldown"`
	TargetCount    int     `yaml:"target_count"`

	PegPoints    uint64 `yaml:"peg_points"`
	BumperPoints uint64 `yaml:"bumper_points"`
	TargetPoints uint64 `yaml:"target_points"`
	RampPoints   uint64 `yaml:"ramp_points"`

	Achievements AchievementTuning `yaml:"achievements"`
	Fever        FeverTuning       `yaml:"fever"`
	Cannon       CannonTuning      `yaml:"cannon"`

	Symbols []SymbolWeight `yaml:"symbols"`
	Payouts PayoutTable    `yaml:"payouts"`
}

type AchievementTuning struct {
	FirstBumperBonus uint64  `yaml:"first_bumper_bonus"`
	FirstRampBonus   uint64  `yaml:"first_ramp_bonus"`
	AllTargetsBonus  uint64  `yaml:"all_targets_bonus"`
	ComboStreak      uint32  `yaml:"combo_streak"`
	ComboStreakBonus uint64  `yaml:"combo_streak_bonus"`
	BannerDuration   float64 `yaml:"banner_duration"`
}

type FeverTuning struct {
	ComboThreshold uint32  `yaml:"combo_threshold"`
	Multiplier     uint32  `yaml:"multiplier"`
	Duration       float64 `yaml:"duration"`
}

type CannonTuning struct {
	X                 float64 `yaml:"x"`
	Y                 float64 `yaml:"y"`
	Speed             float64 `yaml:"speed"`
	Angle             float64 `yaml:"angle"`
	MinAngle          float64 `yaml:"min_angle"`
	MaxAngle          float64 `yaml:"max_angle"`
	Cooldown          float64 `yaml:"cooldown"`
	RapidFireCooldown float64 `yaml:"rapid_fire_cooldown"`
}

var ErrInvalidTuning = errors.New("invalid tuning")

// DefaultTuning returns the reference configuration.
func DefaultTuning() Tuning {
	return Tuning{
		InitialBalls:   2000,
		MaxActiveBalls: 150,
		MaxFrameDelta:  0.1,

		ChuteThreshold: 10,
		AutoSpinDelay:  5,
		SpinDuration:   2,
		PayoutDisplay:  3,
		PayoutLockout:  2,

		ComboWindow:    1.5,
		BumperCooldown: 0.15,
		TargetCount:    5,

		PegPoints:    10,
		BumperPoints: 50,
		TargetPoints: 100,
		RampPoints:   250,

		Achievements: AchievementTuning{
			FirstBumperBonus: 1000,
			FirstRampBonus:   2500,
			AllTargetsBonus:  5000,
			ComboStreak:      10,
			ComboStreakBonus: 2000,
			BannerDuration:   2,
		},
		Fever: FeverTuning{
			ComboThreshold: 25,
			Multiplier:     3,
			Duration:       10,
		},
		Cannon: CannonTuning{
			X:                 300,
			Y:                 40,
			Speed:             420,
			Angle:             1.5707963267948966, // straight down
			MinAngle:          0.35,
			MaxAngle:          2.79,
			Cooldown:          0.25,
			RapidFireCooldown: 0.08,
		},

		Symbols: DefaultSymbolWeights(),
		Payouts: DefaultPayoutTable(),
	}
}

// LoadTuning reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate rejects configurations the session cannot run with.
func (t Tuning) Validate() error {
	switch {
	case t.InitialBalls < 0:
		return fmt.Errorf("%w: initial_balls must not be negative", ErrInvalidTuning)
	case t.MaxActiveBalls <= 0:
		return fmt.Errorf("%w: max_active_balls must be positive", ErrInvalidTuning)
	case t.MaxFrameDelta <= 0:
		return fmt.Errorf("%w: max_frame_delta must be positive", ErrInvalidTuning)
	case t.ChuteThreshold <= 0:
		return fmt.Errorf("%w: chute_threshold must be positive", ErrInvalidTuning)
	case t.ComboWindow <= 0:
		return fmt.Errorf("%w: combo_window must be positive", ErrInvalidTuning)
	case t.AutoSpinDelay < 0 || t.SpinDuration < 0 || t.PayoutDisplay < 0 || t.PayoutLockout < 0:
		return fmt.Errorf("%w: jackpot timings must not be negative", ErrInvalidTuning)
	case t.Fever.ComboThreshold > 0 && t.Fever.Multiplier <= 1:
		return fmt.Errorf("%w: fever multiplier must exceed 1", ErrInvalidTuning)
	}
	if _, err := NewSymbolTable(t.Symbols); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTuning, err)
	}
	if err := t.Payouts.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTuning, err)
	}
	return nil
}
