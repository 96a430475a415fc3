package physics

import (
	"github.com/playmatatu/pegfall/internal/game"
)

var _ game.Physics = (*Playfield)(nil)

type ball struct {
	position Vec2
	velocity Vec2
	active   bool
}

// BallState is a read-only copy of one ball for renderers.
type BallState struct {
	Handle   game.BallHandle `json:"handle"`
	Position Vec2            `json:"position"`
	Velocity Vec2            `json:"velocity"`
}

type pairKey struct {
	ball game.BallHandle
	body game.Body
}

// Playfield is the reference physics collaborator: gravity, round fixtures,
// segment walls, flippers and sensor regions. It reports a contact when a
// ball begins touching a body; a ball resting against a body reports once.
type Playfield struct {
	layout   *Layout
	balls    []ball
	flippers []bool

	touching map[pairKey]bool
	current  map[pairKey]bool
	contacts []game.Contact
}

// New builds a playfield with capacity ball slots, all parked.
func New(layout *Layout, capacity int) *Playfield {
	p := &Playfield{
		layout:   layout,
		balls:    make([]ball, capacity),
		flippers: make([]bool, len(layout.Flippers)),
		touching: make(map[pairKey]bool),
		current:  make(map[pairKey]bool),
	}
	for i := range p.balls {
		p.balls[i].position = parkedAt(i)
	}
	return p
}

func parkedAt(i int) Vec2 {
	return game.NewVec2(float64(i)*3*BallRadius, ParkY)
}

func (p *Playfield) Layout() *Layout {
	return p.layout
}

func (p *Playfield) PlaceBall(h game.BallHandle, pos, vel Vec2) {
	if !p.valid(h) {
		return
	}
	p.balls[h] = ball{position: pos, velocity: vel, active: true}
	p.forget(h)
}

// ParkBall removes the ball from the simulation and moves it off-field.
func (p *Playfield) ParkBall(h game.BallHandle) {
	if !p.valid(h) {
		return
	}
	p.balls[h] = ball{position: parkedAt(int(h))}
	p.forget(h)
}

func (p *Playfield) SetFlipper(side game.Side, active bool) {
	for i, f := range p.layout.Flippers {
		if f.Side == side {
			p.flippers[i] = active
		}
	}
}

func (p *Playfield) valid(h game.BallHandle) bool {
	return h >= 0 && int(h) < len(p.balls)
}

func (p *Playfield) forget(h game.BallHandle) {
	for k := range p.touching {
		if k.ball == h {
			delete(p.touching, k)
		}
	}
}

// Step advances the simulation by dt in fixed substeps and returns the
// contacts that began during the step, in the order they happened.
func (p *Playfield) Step(dt float64) []game.Contact {
	p.contacts = p.contacts[:0]
	for dt > 0 {
		h := min(dt, MaxSubstep)
		p.substep(h)
		dt -= h
	}
	out := make([]game.Contact, len(p.contacts))
	copy(out, p.contacts)
	return out
}

func (p *Playfield) substep(h float64) {
	clear(p.current)
	gravity := game.NewVec2(0, Gravity*h)

	for i := range p.balls {
		b := &p.balls[i]
		if !b.active {
			continue
		}
		b.velocity = b.velocity.Plus(gravity)
		if speed := b.velocity.Magnitude(); speed > MaxSpeed {
			b.velocity = b.velocity.Times(MaxSpeed / speed)
		}
		prev := b.position
		b.position = b.position.Plus(b.velocity.Times(h))

		handle := game.BallHandle(i)
		p.collideFixtures(handle, b, prev)
		p.collideWalls(b)
		p.collideFlippers(handle, b)
		p.checkSensors(handle, b)
	}
	p.collideBalls()

	p.touching, p.current = p.current, p.touching
}

func (p *Playfield) collideFixtures(handle game.BallHandle, b *ball, prev Vec2) {
	for _, f := range p.layout.Fixtures {
		reach := f.Radius + BallRadius
		offset := b.position.Minus(f.Center)
		swept := false
		if offset.MagnitudeSquared() > (reach+ContactSlop)*(reach+ContactSlop) {
			// fast balls can pass through a small peg inside one substep
			hit := segmentIntersectCircle(prev, b.position, f.Center, reach)
			if hit.enter == nil {
				continue
			}
			b.position = *hit.enter
			offset = b.position.Minus(f.Center)
			swept = true
		}
		p.touch(handle, f.Tag, f.Body)

		dist := offset.Magnitude()
		if dist >= reach && !swept {
			continue
		}
		n := offset.Normalize()
		if dist == 0 {
			n = game.NewVec2(0, -1)
		}
		if dist < reach {
			b.position = f.Center.Plus(n.Times(reach))
		}
		if b.velocity.Dot(n) >= 0 {
			continue
		}
		switch f.Tag {
		case game.TagBumper:
			b.velocity = b.velocity.Reflect(n, BumperRestitution).Plus(n.Times(BumperKick))
		default:
			b.velocity = b.velocity.Reflect(n, PegRestitution)
		}
	}
}

func (p *Playfield) collideWalls(b *ball) {
	for _, w := range p.layout.Walls {
		p.pushOutOfSegment(b, w.P1, w.P2, w.Normal, WallRestitution, 0)
	}
}

func (p *Playfield) collideFlippers(handle game.BallHandle, b *ball) {
	for i, f := range p.layout.Flippers {
		active := p.flippers[i]
		tip := f.Tip(active)
		normal := newWall("", f.Pivot, tip, game.NewVec2(f.Pivot.X, 0)).Normal
		kick := 0.0
		if active {
			kick = FlipperKick
		}
		if p.pushOutOfSegment(b, f.Pivot, tip, normal, WallRestitution, kick) {
			p.touch(handle, game.TagFlipper, f.Body)
		}
	}
}

// pushOutOfSegment resolves overlap between the ball and a solid segment.
// It reports whether the ball was touching the segment.
func (p *Playfield) pushOutOfSegment(b *ball, a, c, fallback Vec2, restitution, kick float64) bool {
	closest := closestPointOnSegment(a, c, b.position)
	offset := b.position.Minus(closest)
	dist := offset.Magnitude()
	if dist >= BallRadius {
		return false
	}
	n := offset.Normalize()
	if dist == 0 {
		n = fallback
	}
	b.position = closest.Plus(n.Times(BallRadius))
	if b.velocity.Dot(n) < 0 {
		b.velocity = b.velocity.Reflect(n, restitution)
	}
	if kick > 0 {
		b.velocity = b.velocity.Plus(n.Times(kick))
	}
	return true
}

func (p *Playfield) checkSensors(handle game.BallHandle, b *ball) {
	for _, s := range p.layout.Sensors {
		if s.contains(b.position) {
			p.touch(handle, s.Tag, s.Body)
		}
	}
}

// collideBalls separates overlapping balls. Ball-ball contacts are not
// reported.
func (p *Playfield) collideBalls() {
	const reach = 2 * BallRadius
	for i := range p.balls {
		a := &p.balls[i]
		if !a.active {
			continue
		}
		for j := i + 1; j < len(p.balls); j++ {
			o := &p.balls[j]
			if !o.active {
				continue
			}
			offset := o.position.Minus(a.position)
			d2 := offset.MagnitudeSquared()
			if d2 >= reach*reach {
				continue
			}
			n := offset.Normalize()
			if d2 == 0 {
				n = game.NewVec2(1, 0)
			}
			overlap := reach - offset.Magnitude()
			a.position = a.position.Minus(n.Times(overlap / 2))
			o.position = o.position.Plus(n.Times(overlap / 2))

			if !converging(a.position, o.position, a.velocity, o.velocity) {
				continue
			}
			r := n.RightNormal()
			aNormal := n.Times(a.velocity.Dot(n))
			aTangent := r.Times(a.velocity.Dot(r))
			oNormal := n.Times(o.velocity.Dot(n))
			oTangent := r.Times(o.velocity.Dot(r))

			a.velocity = aTangent.Plus(oNormal.Times(BallRestitution).Plus(aNormal.Times(1 - BallRestitution)))
			o.velocity = oTangent.Plus(aNormal.Times(BallRestitution).Plus(oNormal.Times(1 - BallRestitution)))
		}
	}
}

// touch marks the pair as touching this substep and records a contact when
// it was not touching in the previous one.
func (p *Playfield) touch(handle game.BallHandle, tag game.Tag, body game.Body) {
	key := pairKey{ball: handle, body: body}
	if p.current[key] {
		return
	}
	p.current[key] = true
	if p.touching[key] {
		return
	}
	p.contacts = append(p.contacts, game.Contact{
		TagA:  game.TagBall,
		BodyA: game.Body(handle),
		TagB:  tag,
		BodyB: body,
	})
}

// Balls returns the active balls.
func (p *Playfield) Balls() []BallState {
	var out []BallState
	for i, b := range p.balls {
		if b.active {
			out = append(out, BallState{Handle: game.BallHandle(i), Position: b.position, Velocity: b.velocity})
		}
	}
	return out
}

// Ball returns the state of one ball and whether it is active.
func (p *Playfield) Ball(h game.BallHandle) (BallState, bool) {
	if !p.valid(h) {
		return BallState{}, false
	}
	b := p.balls[h]
	return BallState{Handle: h, Position: b.position, Velocity: b.velocity}, b.active
}
