package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCannon_AimIsClamped(t *testing.T) {
	c := NewCannon(DefaultTuning().Cannon)
	assert.Equal(t, math.Pi/2, c.Angle())
	assert.Equal(t, 0.35, c.Aim(0))
	assert.Equal(t, 2.79, c.Aim(4))
	assert.InDelta(t, 2.69, c.Nudge(-0.1), 1e-9)
}

func TestCannon_FireAlongAim(t *testing.T) {
	tun := DefaultTuning().Cannon
	c := NewCannon(tun)
	phys := newFakePhysics()
	pool := NewBallPool(10, 10, phys, nil)

	h, ok := c.Fire(pool)
	require.True(t, ok)
	assert.Equal(t, NewVec2(tun.X, tun.Y), phys.placed[h])
	assert.False(t, c.Ready())

	_, ok = c.Fire(pool)
	assert.False(t, ok)
	assert.Equal(t, 9, pool.Total(), "a cooling cannon does not spend balls")

	c.Tick(tun.Cooldown)
	assert.True(t, c.Ready())
}

func TestCannon_RapidFireShortensCooldown(t *testing.T) {
	tun := DefaultTuning().Cannon
	c := NewCannon(tun)
	pool := NewBallPool(10, 10, newFakePhysics(), nil)

	c.UnlockRapidFire()
	_, ok := c.Fire(pool)
	require.True(t, ok)
	assert.Equal(t, tun.RapidFireCooldown, c.View().Cooldown)

	c.Reset()
	assert.False(t, c.RapidFire())
	assert.True(t, c.Ready())
}
