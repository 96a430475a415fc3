package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsInTimeThenSequenceOrder(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.After(1.0, "late", func() { order = append(order, "late") })
	s.After(0.5, "first", func() { order = append(order, "first") })
	s.After(0.5, "second", func() { order = append(order, "second") })

	s.Advance(0.4)
	assert.Equal(t, 0, s.RunDue())

	s.Advance(1.0)
	assert.Equal(t, 3, s.RunDue())
	assert.Equal(t, []string{"first", "second", "late"}, order)
	assert.Equal(t, 0, s.Pending())
}

func TestScheduler_CallbacksMayScheduleDueEvents(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.After(0, "outer", func() {
		order = append(order, "outer")
		s.After(0, "inner", func() { order = append(order, "inner") })
		s.After(1, "future", func() { order = append(order, "future") })
	})

	assert.Equal(t, 2, s.RunDue())
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, 1, s.Pending())
}

func TestScheduler_CancelAndClear(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.After(1, "banner", func() { fired++ })
	s.After(2, "banner", func() { fired++ })
	s.After(3, "other", func() { fired++ })

	assert.Equal(t, 2, s.Cancel("banner"))
	s.Advance(5)
	s.RunDue()
	assert.Equal(t, 1, fired)

	s.After(1, "x", func() { fired++ })
	s.Clear()
	s.Advance(10)
	assert.Equal(t, 0, s.RunDue())
}

func TestScheduler_ClockNeverMovesBack(t *testing.T) {
	s := NewScheduler()
	s.Advance(2)
	s.Advance(1)
	assert.Equal(t, 2.0, s.Now())
}
