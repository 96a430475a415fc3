package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBallPool_SpawnThenDrainKeepsSupply(t *testing.T) {
	phys := newFakePhysics()
	pool := NewBallPool(150, 2000, phys, nil)

	h, ok := pool.Spawn(NewVec2(300, 40), NewVec2(0, 100))
	require.True(t, ok)
	assert.Equal(t, 1999, pool.Total())
	assert.Equal(t, 1, pool.Active())
	assert.Equal(t, NewVec2(300, 40), phys.placed[h])

	require.True(t, pool.Return(h))
	assert.Equal(t, 0, pool.Active())
	assert.Equal(t, 1999, pool.Total())
	assert.Equal(t, 1, phys.parked[h])
}

func TestBallPool_ReturnIsIdempotent(t *testing.T) {
	phys := newFakePhysics()
	pool := NewBallPool(4, 10, phys, nil)
	h, ok := pool.Spawn(Vec2{}, Vec2{})
	require.True(t, ok)

	assert.True(t, pool.Return(h))
	assert.False(t, pool.Return(h))
	assert.False(t, pool.Capture(h))

	assert.Equal(t, 0, pool.Active())
	assert.Equal(t, 9, pool.Total())
	assert.Equal(t, 1, phys.parked[h])
}

func TestBallPool_SpawnRefusals(t *testing.T) {
	t.Run("empty supply", func(t *testing.T) {
		pool := NewBallPool(4, 0, newFakePhysics(), nil)
		_, ok := pool.Spawn(Vec2{}, Vec2{})
		assert.False(t, ok)
		assert.Equal(t, 0, pool.Total())
	})

	t.Run("at capacity", func(t *testing.T) {
		pool := NewBallPool(3, 10, newFakePhysics(), nil)
		for range 3 {
			_, ok := pool.Spawn(Vec2{}, Vec2{})
			require.True(t, ok)
		}
		_, ok := pool.Spawn(Vec2{}, Vec2{})
		assert.False(t, ok)
		assert.Equal(t, 3, pool.Active())
		assert.Equal(t, 7, pool.Total())
	})

	t.Run("supply never goes negative", func(t *testing.T) {
		pool := NewBallPool(10, 2, newFakePhysics(), nil)
		for range 5 {
			pool.Spawn(Vec2{}, Vec2{})
		}
		assert.Equal(t, 0, pool.Total())
		assert.Equal(t, 2, pool.Active())
	})
}

func TestBallPool_ReusesFreedSlot(t *testing.T) {
	pool := NewBallPool(2, 10, newFakePhysics(), nil)
	a, _ := pool.Spawn(Vec2{}, Vec2{})
	b, _ := pool.Spawn(Vec2{}, Vec2{})
	require.NotEqual(t, a, b)

	pool.Return(a)
	c, ok := pool.Spawn(Vec2{}, Vec2{})
	require.True(t, ok)
	assert.Equal(t, a, c)
}

func TestBallPool_AddBallsAndReset(t *testing.T) {
	rec := &recorder{}
	pool := NewBallPool(5, 1, newFakePhysics(), rec)
	h, _ := pool.Spawn(Vec2{}, Vec2{})

	pool.AddBalls(50)
	assert.Equal(t, 50, pool.Total())
	assert.True(t, pool.IsActive(h))

	pool.AddBalls(-3)
	assert.Equal(t, 50, pool.Total())

	pool.Reset(2000)
	assert.Equal(t, 2000, pool.Total())
	assert.Equal(t, 0, pool.Active())
	assert.False(t, pool.IsActive(h))

	counts := rec.ofType(NoteBallCountChanged)
	require.NotEmpty(t, counts)
	assert.Equal(t, BallCountChanged{Total: 2000, Active: 0}, counts[len(counts)-1].Data)
}

func TestBallPool_IsActiveOutOfRange(t *testing.T) {
	pool := NewBallPool(2, 10, newFakePhysics(), nil)
	assert.False(t, pool.IsActive(-1))
	assert.False(t, pool.IsActive(2))
}
