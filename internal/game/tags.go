package game

import "fmt"

// Tag is the semantic kind attached to a physics body when it is created.
type Tag uint8

const (
	TagBall Tag = iota
	TagPeg
	TagBumper
	TagTarget
	TagDrain
	TagJackpotIntake
	TagFlipper
	TagRamp
	TagFloor
)

var tagNames = [...]string{
	TagBall:          "ball",
	TagPeg:           "peg",
	TagBumper:        "bumper",
	TagTarget:        "target",
	TagDrain:         "drain",
	TagJackpotIntake: "jackpot_intake",
	TagFlipper:       "flipper",
	TagRamp:          "ramp",
	TagFloor:         "floor",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

func (t Tag) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Body is a physics body handle. For balls it equals the pool slot index.
type Body int

// BallHandle identifies a ball by its pool slot.
type BallHandle int

// Contact is a raw contact reported by the physics collaborator.
type Contact struct {
	TagA  Tag
	BodyA Body
	TagB  Tag
	BodyB Body
}

// Side selects a flipper.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Physics is the narrow surface consumed from the physics engine. Step
// advances the simulation and returns the contacts raised during the step;
// they are processed by the caller before the next step.
type Physics interface {
	Step(dt float64) []Contact
	PlaceBall(h BallHandle, pos, vel Vec2)
	ParkBall(h BallHandle)
	SetFlipper(side Side, active bool)
}
