package game

// Cannon launches balls from the top of the playfield.
type Cannon struct {
	t         CannonTuning
	angle     float64
	cooldown  float64
	rapidFire bool
}

func NewCannon(t CannonTuning) *Cannon {
	c := &Cannon{t: t}
	c.Reset()
	return c
}

// Aim sets the launch angle in radians, clamped to the cannon's arc.
func (c *Cannon) Aim(angle float64) float64 {
	c.angle = min(max(angle, c.t.MinAngle), c.t.MaxAngle)
	return c.angle
}

// Nudge turns the cannon by delta radians.
func (c *Cannon) Nudge(delta float64) float64 {
	return c.Aim(c.angle + delta)
}

func (c *Cannon) Ready() bool {
	return c.cooldown <= 0
}

// Fire spawns a ball from the pool along the current aim. A cannon that is
// still cooling down refuses without touching the pool.
func (c *Cannon) Fire(pool *BallPool) (BallHandle, bool) {
	if !c.Ready() {
		return 0, false
	}
	h, ok := pool.Spawn(c.Muzzle(), FromAngle(c.angle, c.t.Speed))
	if !ok {
		return 0, false
	}
	if c.rapidFire {
		c.cooldown = c.t.RapidFireCooldown
	} else {
		c.cooldown = c.t.Cooldown
	}
	return h, true
}

func (c *Cannon) Tick(dt float64) {
	if c.cooldown > 0 {
		c.cooldown = max(c.cooldown-dt, 0)
	}
}

// UnlockRapidFire shortens the cooldown for the rest of the round.
func (c *Cannon) UnlockRapidFire() {
	c.rapidFire = true
}

func (c *Cannon) Reset() {
	c.angle = c.t.Angle
	c.cooldown = 0
	c.rapidFire = false
}

// Muzzle is the spawn position of fired balls.
func (c *Cannon) Muzzle() Vec2 {
	return NewVec2(c.t.X, c.t.Y)
}

type CannonView struct {
	Angle     float64 `json:"angle"`
	Cooldown  float64 `json:"cooldown"`
	RapidFire bool    `json:"rapid_fire"`
}

func (c *Cannon) View() CannonView {
	return CannonView{Angle: c.angle, Cooldown: c.cooldown, RapidFire: c.rapidFire}
}

func (c *Cannon) Angle() float64  { return c.angle }
func (c *Cannon) RapidFire() bool { return c.rapidFire }
