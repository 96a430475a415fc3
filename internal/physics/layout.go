package physics

import (
	"math"

	"github.com/playmatatu/pegfall/internal/game"
)

// Wall is a solid segment. Normal points into the playfield.
type Wall struct {
	Name      string `json:"name"`
	P1        Vec2   `json:"p1"`
	P2        Vec2   `json:"p2"`
	Direction Vec2   `json:"direction"`
	Normal    Vec2   `json:"normal"`
}

func newWall(name string, p1, p2, inside Vec2) Wall {
	dir := p2.Minus(p1).Normalize()
	normal := dir.RightNormal()
	if inside.Minus(p1).Dot(normal) < 0 {
		normal = normal.Times(-1)
	}
	return Wall{Name: name, P1: p1, P2: p2, Direction: dir, Normal: normal}
}

// Fixture is a round solid body: peg, bumper or target.
type Fixture struct {
	Body   game.Body `json:"body"`
	Tag    game.Tag  `json:"tag"`
	Center Vec2      `json:"center"`
	Radius float64   `json:"radius"`
}

// Sensor is an axis-aligned region that reports entry without deflecting
// the ball: drain, jackpot intake, ramp.
type Sensor struct {
	Body game.Body `json:"body"`
	Tag  game.Tag  `json:"tag"`
	Min  Vec2      `json:"min"`
	Max  Vec2      `json:"max"`
}

func (s Sensor) contains(p Vec2) bool {
	return p.X >= s.Min.X && p.X <= s.Max.X && p.Y >= s.Min.Y && p.Y <= s.Max.Y
}

// Flipper is a segment rotating about Pivot between a rest and an active
// angle.
type Flipper struct {
	Body        game.Body `json:"body"`
	Side        game.Side `json:"side"`
	Pivot       Vec2      `json:"pivot"`
	Length      float64   `json:"length"`
	RestAngle   float64   `json:"rest_angle"`
	ActiveAngle float64   `json:"active_angle"`
}

func (f Flipper) Tip(active bool) Vec2 {
	angle := f.RestAngle
	if active {
		angle = f.ActiveAngle
	}
	return f.Pivot.Plus(game.FromAngle(angle, f.Length))
}

// Layout is the static geometry of a playfield.
type Layout struct {
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Walls    []Wall    `json:"walls"`
	Fixtures []Fixture `json:"fixtures"`
	Sensors  []Sensor  `json:"sensors"`
	Flippers []Flipper `json:"flippers"`
}

type bodyAllocator struct{ next game.Body }

func (a *bodyAllocator) take() game.Body {
	b := a.next
	a.next++
	return b
}

// NewStandardPlayfield builds the reference table: a staggered peg field,
// three bumpers, five targets, two ramp lanes, the jackpot intake cup and a
// drain between two flippers.
func NewStandardPlayfield() *Layout {
	const w, h = 600.0, 900.0
	inside := game.NewVec2(w/2, h/2)
	ids := &bodyAllocator{next: FixtureBase}
	v := game.NewVec2

	l := &Layout{Width: w, Height: h}

	l.Walls = []Wall{
		newWall("top", v(0, 0), v(w, 0), inside),
		newWall("left", v(0, 0), v(0, h), inside),
		newWall("right", v(w, 0), v(w, h), inside),
		newWall("left_inlane", v(0, 760), v(190, 830), inside),
		newWall("right_inlane", v(w, 760), v(410, 830), inside),
		newWall("intake_left", v(255, 505), v(270, 540), inside),
		newWall("intake_right", v(345, 505), v(330, 540), inside),
	}

	for row := range 8 {
		y := 140 + float64(row)*45
		start, count := 60.0, 9
		if row%2 == 1 {
			start, count = 90.0, 8
		}
		for i := range count {
			l.Fixtures = append(l.Fixtures, Fixture{
				Body: ids.take(), Tag: game.TagPeg, Center: v(start+float64(i)*60, y), Radius: 5,
			})
		}
	}
	for _, c := range []Vec2{v(150, 570), v(450, 570), v(300, 650)} {
		l.Fixtures = append(l.Fixtures, Fixture{Body: ids.take(), Tag: game.TagBumper, Center: c, Radius: 18})
	}
	for _, x := range []float64{60, 180, 300, 420, 540} {
		l.Fixtures = append(l.Fixtures, Fixture{Body: ids.take(), Tag: game.TagTarget, Center: v(x, 730), Radius: 7})
	}

	l.Sensors = []Sensor{
		{Body: ids.take(), Tag: game.TagJackpotIntake, Min: v(270, 520), Max: v(330, 545)},
		{Body: ids.take(), Tag: game.TagRamp, Min: v(0, 480), Max: v(30, 520)},
		{Body: ids.take(), Tag: game.TagRamp, Min: v(570, 480), Max: v(w, 520)},
		{Body: ids.take(), Tag: game.TagDrain, Min: v(0, 870), Max: v(w, h+200)},
	}

	l.Flippers = []Flipper{
		{Body: ids.take(), Side: game.SideLeft, Pivot: v(190, 830), Length: 70, RestAngle: 0.5, ActiveAngle: -0.45},
		{Body: ids.take(), Side: game.SideRight, Pivot: v(410, 830), Length: 70, RestAngle: math.Pi - 0.5, ActiveAngle: math.Pi + 0.45},
	}
	return l
}

// FixturesTagged returns the fixtures with the given tag.
func (l *Layout) FixturesTagged(tag game.Tag) []Fixture {
	var out []Fixture
	for _, f := range l.Fixtures {
		if f.Tag == tag {
			out = append(out, f)
		}
	}
	return out
}

// SensorTagged returns the first sensor with the given tag.
func (l *Layout) SensorTagged(tag game.Tag) (Sensor, bool) {
	for _, s := range l.Sensors {
		if s.Tag == tag {
			return s, true
		}
	}
	return Sensor{}, false
}
