package game

import (
	"math"

	"go.uber.org/zap"
)

const (
	eventReelStop      = "reel_stop"
	eventPayoutDisplay = "payout_display"
	eventLockoutEnd    = "payout_lockout_end"
)

// reelStops are the reveal times of each reel as a fraction of the spin.
var reelStops = [3]float64{0.5, 0.75, 1.0}

// RewardSink receives the outcome of a spin.
type RewardSink interface {
	CurrentScore() uint64
	ApplyPayout(r PayoutResult)
}

// Jackpot is the chute and reel machine.
type Jackpot struct {
	phase     JackpotPhase
	chute     int
	countdown float64

	reels        [3]Symbol
	resolved     [3]bool
	preSpinScore uint64
	last         *PayoutResult

	// gen invalidates scheduled reel stops and lockouts left over from a
	// spin that was reset.
	gen uint64

	threshold     int
	autoSpinDelay float64
	spinDuration  float64
	display       float64
	lockout       float64

	symbols *SymbolTable
	payouts PayoutTable
	rng     RNG
	sched   *Scheduler
	sink    RewardSink
	notify  Notifier
	log     *zap.SugaredLogger

	onPhase func(from, to JackpotPhase)
}

func NewJackpot(t Tuning, symbols *SymbolTable, rng RNG, sched *Scheduler, sink RewardSink, notify Notifier, log *zap.SugaredLogger) *Jackpot {
	if notify == nil {
		notify = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Jackpot{
		phase:         JackpotIdle,
		threshold:     t.ChuteThreshold,
		autoSpinDelay: t.AutoSpinDelay,
		spinDuration:  t.SpinDuration,
		display:       t.PayoutDisplay,
		lockout:       t.PayoutLockout,
		symbols:       symbols,
		payouts:       t.Payouts,
		rng:           rng,
		sched:         sched,
		sink:          sink,
		notify:        notify,
		log:           log,
	}
}

// AddBall counts a captured ball. Accumulation is paused during the payout
// lockout; it reports whether the ball was counted.
func (j *Jackpot) AddBall() bool {
	if j.phase == JackpotPayoutLockout {
		return false
	}
	j.chute++
	j.notify.Notify(Notification{Type: NoteJackpotCount, Data: JackpotCount{Count: j.chute, Threshold: j.threshold}})

	switch j.phase {
	case JackpotIdle, JackpotAccumulating:
		if j.chute >= j.threshold {
			j.countdown = j.autoSpinDelay
			j.setPhase(JackpotReadyCountdown)
			j.notify.Notify(Notification{Type: NoteJackpotReady, Data: JackpotReady{Countdown: j.countdown}})
			j.notify.Notify(Notification{Type: NoteBanner, Data: Banner{Text: "JACKPOT READY!", Color: ColorReward}})
		} else if j.phase == JackpotIdle {
			j.setPhase(JackpotAccumulating)
		}
	}
	return true
}

// Tick runs the auto-spin countdown.
func (j *Jackpot) Tick(dt float64) {
	if j.phase != JackpotReadyCountdown {
		return
	}
	before := int(math.Ceil(j.countdown))
	j.countdown -= dt
	if j.countdown <= comboEpsilon {
		j.countdown = 0
		j.startSpin()
		return
	}
	if after := int(math.Ceil(j.countdown)); after != before {
		j.notify.Notify(Notification{Type: NoteJackpotCountdown, Data: JackpotCountdown{Seconds: after}})
	}
}

// TriggerSpin starts the spin early. Anything but a ready machine ignores it.
func (j *Jackpot) TriggerSpin() bool {
	if j.phase != JackpotReadyCountdown || j.chute < j.threshold {
		return false
	}
	j.startSpin()
	return true
}

func (j *Jackpot) startSpin() {
	j.setPhase(JackpotSpinning)
	j.countdown = 0
	j.last = nil
	j.resolved = [3]bool{}
	j.preSpinScore = j.sink.CurrentScore()
	for i := range j.reels {
		j.reels[i] = j.symbols.Draw(j.rng)
	}
	j.notify.Notify(Notification{Type: NoteSound, Data: Sound{Cue: CueReelSpin}})

	gen := j.gen
	for i := range j.reels {
		j.notify.Notify(Notification{Type: NoteReelSpin, Data: ReelSpin{Index: i}})
		j.sched.After(j.spinDuration*reelStops[i], eventReelStop, func() {
			if j.gen == gen {
				j.stopReel(i)
			}
		})
	}
	j.log.Debugw("spin started", "reels", j.reels, "pre_spin_score", j.preSpinScore)
}

func (j *Jackpot) stopReel(i int) {
	if j.phase != JackpotSpinning || j.resolved[i] {
		return
	}
	j.resolved[i] = true
	j.notify.Notify(Notification{Type: NoteReelStop, Data: ReelStop{Index: i, Symbol: j.reels[i]}})
	j.notify.Notify(Notification{Type: NoteSound, Data: Sound{Cue: CueReelStop}})
	if j.resolved == [3]bool{true, true, true} {
		j.evaluate()
	}
}

func (j *Jackpot) evaluate() {
	result := j.payouts.Evaluate(j.reels, j.preSpinScore)
	j.last = &result
	j.setPhase(JackpotEvaluated)
	j.sink.ApplyPayout(result)
	j.notify.Notify(Notification{Type: NoteJackpotResult, Data: JackpotResult{Reels: j.reels, Payout: result}})
	j.log.Infow("spin evaluated",
		"reels", j.reels,
		"tier", result.Tier,
		"points", result.Points,
		"free_balls", result.FreeBalls,
	)

	gen := j.gen
	j.sched.After(j.display, eventPayoutDisplay, func() {
		if j.gen != gen {
			return
		}
		j.setPhase(JackpotPayoutLockout)
		j.sched.After(j.lockout, eventLockoutEnd, func() {
			if j.gen == gen {
				j.Reset()
			}
		})
	})
}

// Reset empties the chute and returns the machine to Idle. Any reel stop or
// lockout still scheduled from an earlier spin is ignored when it fires.
func (j *Jackpot) Reset() {
	j.gen++
	j.chute = 0
	j.countdown = 0
	j.resolved = [3]bool{}
	j.setPhase(JackpotIdle)
	j.notify.Notify(Notification{Type: NoteJackpotCount, Data: JackpotCount{Count: 0, Threshold: j.threshold}})
}

func (j *Jackpot) setPhase(p JackpotPhase) {
	if p == j.phase {
		return
	}
	from := j.phase
	j.phase = p
	j.log.Debugw("jackpot phase", "from", from, "to", p)
	if j.onPhase != nil {
		j.onPhase(from, p)
	}
}

// JackpotView is a read-only copy of the machine for snapshots.
type JackpotView struct {
	Phase     JackpotPhase  `json:"phase"`
	Chute     int           `json:"chute"`
	Threshold int           `json:"threshold"`
	Countdown float64       `json:"countdown"`
	Reels     []string      `json:"reels"`
	Last      *PayoutResult `json:"last_payout,omitempty"`
}

func (j *Jackpot) View() JackpotView {
	v := JackpotView{
		Phase:     j.phase,
		Chute:     j.chute,
		Threshold: j.threshold,
		Countdown: j.countdown,
		Reels:     make([]string, len(j.reels)),
	}
	for i, s := range j.reels {
		if j.resolved[i] {
			v.Reels[i] = s.String()
		}
	}
	if j.last != nil {
		last := *j.last
		v.Last = &last
	}
	return v
}

func (j *Jackpot) Phase() JackpotPhase { return j.phase }
func (j *Jackpot) Chute() int          { return j.chute }
func (j *Jackpot) Countdown() float64  { return j.countdown }
func (j *Jackpot) Spinning() bool      { return j.phase == JackpotSpinning }

// Reels returns the drawn symbols and which of them have been revealed.
func (j *Jackpot) Reels() ([3]Symbol, [3]bool) { return j.reels, j.resolved }
