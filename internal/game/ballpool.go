package game

// BallPool owns a fixed set of ball handles. Handles are allocated inactive
// at construction; spawning activates one and spends a ball from the supply.
type BallPool struct {
	active  []bool
	nActive int
	total   int

	physics Physics
	notify  Notifier
}

// NewBallPool allocates capacity inactive handles with an initial supply.
func NewBallPool(capacity, total int, physics Physics, notify Notifier) *BallPool {
	if notify == nil {
		notify = nopNotifier{}
	}
	return &BallPool{
		active:  make([]bool, capacity),
		total:   total,
		physics: physics,
		notify:  notify,
	}
}

// Spawn activates a free handle at pos with velocity vel. It fails when the
// supply is empty or every handle is in play; the supply never goes negative
// through Spawn.
func (p *BallPool) Spawn(pos, vel Vec2) (BallHandle, bool) {
	if p.total <= 0 || p.nActive >= len(p.active) {
		return 0, false
	}
	for i, on := range p.active {
		if on {
			continue
		}
		h := BallHandle(i)
		p.active[i] = true
		p.nActive++
		p.total--
		p.physics.PlaceBall(h, pos, vel)
		p.publish()
		return h, true
	}
	return 0, false
}

// Return deactivates the ball and parks it off the playfield. Returning an
// inactive ball does nothing. The supply is not restored.
func (p *BallPool) Return(h BallHandle) bool {
	if !p.IsActive(h) {
		return false
	}
	p.active[h] = false
	p.nActive--
	p.physics.ParkBall(h)
	p.publish()
	return true
}

// Capture removes a ball that entered the jackpot intake. It behaves like
// Return; the chute count is kept by the jackpot machine.
func (p *BallPool) Capture(h BallHandle) bool {
	return p.Return(h)
}

// AddBalls grows the supply. Active balls are unaffected.
func (p *BallPool) AddBalls(n int) {
	if n <= 0 {
		return
	}
	p.total += n
	p.publish()
}

// Reset parks every active ball and sets the supply.
func (p *BallPool) Reset(total int) {
	for i, on := range p.active {
		if on {
			p.active[i] = false
			p.physics.ParkBall(BallHandle(i))
		}
	}
	p.nActive = 0
	p.total = total
	p.publish()
}

// ParkAll parks every handle, used once at load time.
func (p *BallPool) ParkAll() {
	for i := range p.active {
		p.physics.ParkBall(BallHandle(i))
	}
}

func (p *BallPool) IsActive(h BallHandle) bool {
	return h >= 0 && int(h) < len(p.active) && p.active[h]
}

func (p *BallPool) Total() int    { return p.total }
func (p *BallPool) Active() int   { return p.nActive }
func (p *BallPool) Capacity() int { return len(p.active) }

func (p *BallPool) publish() {
	p.notify.Notify(Notification{
		Type: NoteBallCountChanged,
		Data: BallCountChanged{Total: p.total, Active: p.nActive},
	})
}
