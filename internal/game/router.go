package game

import (
	"cmp"
	"slices"
)

// contact priorities; lower runs first within a frame's batch.
const (
	priorityDrain = iota
	priorityIntake
	priorityScoring
)

var contactPriority = map[Tag]int{
	TagDrain:         priorityDrain,
	TagJackpotIntake: priorityIntake,
	TagPeg:           priorityScoring,
	TagBumper:        priorityScoring,
	TagTarget:        priorityScoring,
	TagRamp:          priorityScoring,
}

// ballContact is a contact with the ball on one side and the body it hit on
// the other.
type ballContact struct {
	ball  BallHandle
	other Tag
	body  Body
}

type contactHandler func(ballContact)

// Router classifies raw contacts and dispatches them by the tag of the body
// the ball touched.
type Router struct {
	pool    *BallPool
	scoring *Scoring
	jackpot *Jackpot
	sched   *Scheduler
	notify  Notifier

	pegPoints      uint64
	bumperPoints   uint64
	targetPoints   uint64
	rampPoints     uint64
	bumperCooldown float64
	targetCount    int

	bumperHits map[Body]float64
	targetsHit map[Body]bool

	handlers map[Tag]contactHandler
	batch    []ballContact
}

func NewRouter(t Tuning, pool *BallPool, scoring *Scoring, jackpot *Jackpot, sched *Scheduler, notify Notifier) *Router {
	if notify == nil {
		notify = nopNotifier{}
	}
	r := &Router{
		pool:           pool,
		scoring:        scoring,
		jackpot:        jackpot,
		sched:          sched,
		notify:         notify,
		pegPoints:      t.PegPoints,
		bumperPoints:   t.BumperPoints,
		targetPoints:   t.TargetPoints,
		rampPoints:     t.RampPoints,
		bumperCooldown: t.BumperCooldown,
		targetCount:    t.TargetCount,
		bumperHits:     make(map[Body]float64),
		targetsHit:     make(map[Body]bool),
	}
	r.handlers = map[Tag]contactHandler{
		TagDrain:         r.onDrain,
		TagJackpotIntake: r.onIntake,
		TagPeg:           r.onPeg,
		TagBumper:        r.onBumper,
		TagTarget:        r.onTarget,
		TagRamp:          r.onRamp,
	}
	return r
}

// classify splits a contact into ball and other body. Pairs that do not
// involve exactly one ball are rejected.
func classify(c Contact) (ballContact, bool) {
	aBall, bBall := c.TagA == TagBall, c.TagB == TagBall
	switch {
	case aBall && !bBall:
		return ballContact{ball: BallHandle(c.BodyA), other: c.TagB, body: c.BodyB}, true
	case bBall && !aBall:
		return ballContact{ball: BallHandle(c.BodyB), other: c.TagA, body: c.BodyA}, true
	}
	return ballContact{}, false
}

// OnContact handles a single contact immediately.
func (r *Router) OnContact(tagA, tagB Tag, bodyA, bodyB Body) {
	r.Dispatch([]Contact{{TagA: tagA, BodyA: bodyA, TagB: tagB, BodyB: bodyB}})
}

// Dispatch processes a frame's contacts. Drains run before intakes and
// intakes before scoring contacts; contacts of equal priority keep their
// physics order. A ball removed by an earlier contact ignores the rest.
func (r *Router) Dispatch(contacts []Contact) {
	r.batch = r.batch[:0]
	for _, c := range contacts {
		bc, ok := classify(c)
		if !ok {
			continue
		}
		if _, routed := r.handlers[bc.other]; !routed {
			continue
		}
		r.batch = append(r.batch, bc)
	}
	slices.SortStableFunc(r.batch, func(a, b ballContact) int {
		return cmp.Compare(contactPriority[a.other], contactPriority[b.other])
	})
	for _, bc := range r.batch {
		if !r.pool.IsActive(bc.ball) {
			continue
		}
		r.handlers[bc.other](bc)
	}
}

func (r *Router) onDrain(c ballContact) {
	if r.pool.Return(c.ball) {
		r.cue(CueDrain)
	}
}

func (r *Router) onIntake(c ballContact) {
	if !r.pool.Capture(c.ball) {
		return
	}
	r.jackpot.AddBall()
	r.cue(CueIntake)
}

func (r *Router) onPeg(ballContact) {
	r.score(r.pegPoints, CuePeg)
}

func (r *Router) onBumper(c ballContact) {
	now := r.sched.Now()
	if last, ok := r.bumperHits[c.body]; ok && now-last < r.bumperCooldown {
		return
	}
	r.bumperHits[c.body] = now
	r.score(r.bumperPoints, CueBumper)
	r.scoring.Unlock(AchievementFirstBumper)
}

func (r *Router) onTarget(c ballContact) {
	if r.targetsHit[c.body] {
		return
	}
	r.targetsHit[c.body] = true
	r.score(r.targetPoints, CueTarget)
	if r.targetCount > 0 && len(r.targetsHit) >= r.targetCount {
		r.scoring.Unlock(AchievementAllTargets)
	}
}

func (r *Router) onRamp(ballContact) {
	r.score(r.rampPoints, CueRamp)
	r.scoring.Unlock(AchievementFirstRamp)
}

func (r *Router) score(base uint64, cue string) {
	r.scoring.Award(base)
	r.scoring.OnEventScored()
	r.cue(cue)
}

func (r *Router) cue(name string) {
	r.notify.Notify(Notification{Type: NoteSound, Data: Sound{Cue: name}})
}

// Reset clears bumper cooldowns and the target hit set.
func (r *Router) Reset() {
	clear(r.bumperHits)
	clear(r.targetsHit)
}

// TargetsHit returns how many distinct targets were hit this round.
func (r *Router) TargetsHit() int {
	return len(r.targetsHit)
}
