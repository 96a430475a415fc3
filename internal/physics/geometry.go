package physics

import (
	"math"

	"github.com/playmatatu/pegfall/internal/game"
)

type Vec2 = game.Vec2

// intersectResult holds the result of a segment-circle intersection test.
type intersectResult struct {
	inside     bool
	intersects bool
	enter      *Vec2
	exit       *Vec2
}

// segmentIntersectCircle tests the segment p1→p2 against a circle. enter is
// the first crossing of the circle boundary along the segment.
func segmentIntersectCircle(p1, p2, center Vec2, radius float64) intersectResult {
	r := intersectResult{}

	d := p2.Minus(p1)
	f := p1.Minus(center)

	a := d.Dot(d)
	b := 2 * f.Dot(d)
	c := f.Dot(f) - radius*radius

	if a == 0 {
		r.inside = c < 0
		return r
	}

	discriminant := b*b - 4*a*c
	if discriminant <= 0 {
		return r
	}

	sqrtDisc := math.Sqrt(discriminant)
	t1 := (-b + sqrtDisc) / (2 * a) // exit
	t2 := (-b - sqrtDisc) / (2 * a) // enter

	if (t1 < 0 || t1 > 1) && (t2 < 0 || t2 > 1) {
		// segment entirely inside when the crossings straddle it
		r.inside = t2 < 0 && t1 > 1
		return r
	}

	if t2 >= 0 && t2 <= 1 {
		enter := pointInterpolate(p1, p2, t2)
		r.enter = &enter
	}
	if t1 >= 0 && t1 <= 1 {
		exit := pointInterpolate(p1, p2, t1)
		r.exit = &exit
	}
	r.intersects = true
	return r
}

// closestPointOnSegment returns the point of a→b nearest to p.
func closestPointOnSegment(a, b, p Vec2) Vec2 {
	ab := b.Minus(a)
	l2 := ab.MagnitudeSquared()
	if l2 == 0 {
		return a
	}
	t := p.Minus(a).Dot(ab) / l2
	t = min(max(t, 0), 1)
	return pointInterpolate(a, b, t)
}

func pointInterpolate(a, b Vec2, t float64) Vec2 {
	return game.NewVec2((1-t)*a.X+t*b.X, (1-t)*a.Y+t*b.Y)
}

// converging reports whether two bodies are moving toward each other.
func converging(posA, posB, velA, velB Vec2) bool {
	return velB.Minus(velA).Dot(posB.Minus(posA)) < 0
}
