package preview

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tween/internal/ir"
	"github.com/roach88/tween/internal/testutil"
	"github.com/roach88/tween/internal/tween"
)

func newScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(width, height)
	t.Cleanup(screen.Fini)
	return screen
}

func testSpec() ir.TweenSpec {
	return ir.TweenSpec{
		Name:     "slide",
		From:     ir.ValueSet{"x": 0, "opacity": 1},
		To:       ir.ValueSet{"x": 100, "opacity": 0},
		Duration: 40 * time.Millisecond,
		Refresh:  10 * time.Millisecond,
		Easing:   "QUAD_OUT",
	}
}

// rowText reads back row y of the screen as runes.
func rowText(screen tcell.SimulationScreen, y, width int) string {
	out := make([]rune, 0, width)
	for x := 0; x < width; x++ {
		ch, _, _, _ := screen.GetContent(x, y)
		out = append(out, ch)
	}
	return string(out)
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}

func TestFraction(t *testing.T) {
	tests := []struct {
		name            string
		value, from, to float64
		want            float64
	}{
		{"start", 0, 0, 100, 0},
		{"middle", 50, 0, 100, 0.5},
		{"end", 100, 0, 100, 1},
		{"descending", 25, 100, 0, 0.75},
		{"overshoot clamped", 110, 0, 100, 1},
		{"undershoot clamped", -10, 0, 100, 0},
		{"constant key", 5, 5, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Fraction(tt.value, tt.from, tt.to), 1e-12)
		})
	}
}

func TestRenderer_DrawsOneBarPerKey(t *testing.T) {
	screen := newScreen(t, 60, 10)
	r := NewRenderer(screen, testSpec())

	require.NoError(t, r.Update(ir.ValueSet{"x": 50, "opacity": 1}))

	assert.Contains(t, rowText(screen, 0, 60), "slide  QUAD_OUT  40ms")

	// Keys are drawn in sorted order: opacity, then x.
	opacityRow := rowText(screen, firstBarRow, 60)
	xRow := rowText(screen, firstBarRow+1, 60)
	assert.Contains(t, opacityRow, "opacity")
	assert.Contains(t, xRow, "x")

	// Bar width: 60 - len("opacity") - valueWidth - 4 = 37.
	assert.Equal(t, 0, countRune(opacityRow, '\u2588'), "opacity at its from value")
	assert.Equal(t, 19, countRune(xRow, '\u2588'), "x halfway")
	assert.Contains(t, xRow, "50.000")

	assert.Equal(t, 1, r.Frames())
	assert.Equal(t, ir.ValueSet{"x": 50, "opacity": 1}, r.Last())
}

func TestRenderer_NarrowScreenKeepsMinimumBar(t *testing.T) {
	screen := newScreen(t, 20, 6)
	r := NewRenderer(screen, testSpec())

	r.Draw(ir.ValueSet{"x": 100, "opacity": 0})

	assert.Equal(t, minBarWidth, countRune(rowText(screen, firstBarRow+1, 20), '\u2588'))
}

func TestRenderer_LastNilBeforeFirstFrame(t *testing.T) {
	r := NewRenderer(newScreen(t, 40, 6), testSpec())
	assert.Nil(t, r.Last())
	assert.Equal(t, 0, r.Frames())
}

func TestRun_DrawsEveryTick(t *testing.T) {
	screen := newScreen(t, 60, 10)

	r, err := Run(context.Background(), screen, testSpec(),
		tween.WithScheduler(tween.SimulatedScheduler{}),
		tween.WithLogger(testutil.DiscardLogger()),
	)
	require.NoError(t, err)

	// Start, four intermediate ticks, final.
	assert.Equal(t, 6, r.Frames())
	assert.Equal(t, ir.ValueSet{"x": 100, "opacity": 0}, r.Last())
}

func TestRun_InvalidSpec(t *testing.T) {
	spec := testSpec()
	spec.Duration = 0

	_, err := Run(context.Background(), newScreen(t, 40, 6), spec)
	require.Error(t, err)
	assert.True(t, ir.IsValidationError(err))
}

func TestRun_QuitKeyCancels(t *testing.T) {
	screen := newScreen(t, 60, 10)
	sched := testutil.NewManualScheduler()

	type outcome struct {
		r   *Renderer
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		r, err := Run(context.Background(), screen, testSpec(),
			tween.WithScheduler(sched),
			tween.WithLogger(testutil.DiscardLogger()),
		)
		done <- outcome{r, err}
	}()

	require.Eventually(t, func() bool { return sched.Last() != nil }, time.Second, time.Millisecond)
	require.True(t, sched.Last().Fire())
	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))

	select {
	case got := <-done:
		require.NoError(t, got.err)
		assert.Less(t, got.r.Frames(), 6, "cancelled before the final frame")
	case <-time.After(2 * time.Second):
		t.Fatal("preview did not stop on Esc")
	}
}

func TestRun_ContextCancel(t *testing.T) {
	screen := newScreen(t, 60, 10)
	sched := testutil.NewManualScheduler()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, screen, testSpec(),
			tween.WithScheduler(sched),
			tween.WithLogger(testutil.DiscardLogger()),
		)
		done <- err
	}()

	require.Eventually(t, func() bool { return sched.Last() != nil }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("preview did not stop on context cancel")
	}
}

func TestIsQuitKey(t *testing.T) {
	assert.True(t, isQuitKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.True(t, isQuitKey(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)))
	assert.True(t, isQuitKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.False(t, isQuitKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
	assert.False(t, isQuitKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)))
}
