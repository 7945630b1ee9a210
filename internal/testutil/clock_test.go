package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tween/internal/tween"
)

var _ tween.Scheduler = (*ManualScheduler)(nil)

func TestManualScheduler_LastAndCount(t *testing.T) {
	s := NewManualScheduler()
	assert.Nil(t, s.Last())
	assert.Equal(t, 0, s.Count())

	first := s.NewTicker(10 * time.Millisecond)
	second := s.NewTicker(20 * time.Millisecond)

	assert.Equal(t, 2, s.Count())
	assert.Same(t, second, s.Last())
	assert.NotSame(t, first, s.Last())
	assert.Equal(t, 20*time.Millisecond, s.Last().Interval())
}

func TestManualTicker_FireDeliversAdvancingTimes(t *testing.T) {
	tk := NewManualScheduler().NewTicker(10 * time.Millisecond).(*ManualTicker)

	got := make(chan time.Time, 3)
	go func() {
		for i := 0; i < 3; i++ {
			got <- <-tk.C()
		}
	}()

	require.Equal(t, 3, tk.FireN(3))
	assert.Equal(t, 3, tk.Fired())

	first, second := <-got, <-got
	assert.Equal(t, 10*time.Millisecond, second.Sub(first))
}

func TestManualTicker_FireAfterStop(t *testing.T) {
	tk := NewManualScheduler().NewTicker(time.Millisecond).(*ManualTicker)
	assert.False(t, tk.Stopped())

	tk.Stop()
	tk.Stop()

	assert.True(t, tk.Stopped())
	assert.False(t, tk.Fire())
	assert.Equal(t, 0, tk.Drain())
	assert.Equal(t, 0, tk.Fired())
}

func TestManualTicker_DrainStopsWhenReceiverStops(t *testing.T) {
	tk := NewManualScheduler().NewTicker(time.Millisecond).(*ManualTicker)

	go func() {
		for i := 0; i < 4; i++ {
			<-tk.C()
		}
		tk.Stop()
	}()

	assert.Equal(t, 4, tk.Drain())
}
