// Package preview animates a running tween in the terminal.
//
// The renderer is an ordinary update callback: it draws each key as a
// horizontal bar scaled between the key's from and to values, so the engine
// drives the animation exactly as it drives any other consumer.
package preview

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/roach88/tween/internal/ir"
	"github.com/roach88/tween/internal/tween"
)

const (
	minBarWidth = 10
	valueWidth  = 12
	firstBarRow = 2
)

var (
	titleStyle = tcell.StyleDefault.Bold(true)
	labelStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	barStyle   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	trackStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	hintStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Renderer draws one bar per key of a tween definition.
//
// Thread-safety: Update and Draw may be called from any goroutine.
type Renderer struct {
	screen tcell.Screen
	spec   ir.TweenSpec
	keys   []string

	mu     sync.Mutex
	frames int
	last   ir.ValueSet
}

// NewRenderer creates a renderer for spec on screen.
// The screen must already be initialised.
func NewRenderer(screen tcell.Screen, spec ir.TweenSpec) *Renderer {
	return &Renderer{
		screen: screen,
		spec:   spec,
		keys:   spec.From.SortedKeys(),
	}
}

// Update draws values. It has the tween.UpdateFunc signature and never fails.
func (r *Renderer) Update(values ir.ValueSet) error {
	r.Draw(values)
	return nil
}

// Draw renders one frame and shows it.
func (r *Renderer) Draw(values ir.ValueSet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames++
	r.last = values.Clone()

	r.screen.Clear()
	width, _ := r.screen.Size()

	title := fmt.Sprintf("%s  %s  %s", r.spec.Name, r.spec.Easing, r.spec.Duration)
	drawText(r.screen, 0, 0, titleStyle, title)

	labelWidth := 0
	for _, k := range r.keys {
		labelWidth = max(labelWidth, len(k))
	}
	barWidth := max(minBarWidth, width-labelWidth-valueWidth-4)

	for i, k := range r.keys {
		y := firstBarRow + i
		drawText(r.screen, 0, y, labelStyle, k)

		x := labelWidth + 1
		r.screen.SetContent(x, y, '[', nil, trackStyle)
		filled := int(Fraction(values[k], r.spec.From[k], r.spec.To[k])*float64(barWidth) + 0.5)
		for j := 0; j < barWidth; j++ {
			if j < filled {
				r.screen.SetContent(x+1+j, y, '\u2588', nil, barStyle)
			} else {
				r.screen.SetContent(x+1+j, y, '\u00b7', nil, trackStyle)
			}
		}
		r.screen.SetContent(x+1+barWidth, y, ']', nil, trackStyle)
		drawText(r.screen, x+barWidth+3, y, tcell.StyleDefault, strconv.FormatFloat(values[k], 'f', 3, 64))
	}

	drawText(r.screen, 0, firstBarRow+len(r.keys)+1, hintStyle, "q / Esc to stop")
	r.screen.Show()
}

// Frames returns how many frames have been drawn.
func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Last returns the most recently drawn values, or nil before the first frame.
func (r *Renderer) Last() ir.ValueSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last.Clone()
}

// Fraction maps value onto [0, 1] between from and to. Overshooting curves
// (BACK, ELASTIC) are clamped. A key whose from equals to is always full.
func Fraction(value, from, to float64) float64 {
	if from == to {
		return 1
	}
	f := (value - from) / (to - from)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Run animates spec on screen until the tween stops.
//
// Pressing q, Esc or Ctrl-C cancels the tween, after which Run returns nil.
// Cancelling ctx stops it as well and Run returns ctx.Err(). The caller owns
// the screen and calls Fini after Run returns, which also ends key polling.
func Run(ctx context.Context, screen tcell.Screen, spec ir.TweenSpec, opts ...tween.Option) (*Renderer, error) {
	r := NewRenderer(screen, spec)

	tw, err := tween.Build(tween.ConfigFromSpec(spec, r.Update), opts...)
	if err != nil {
		return nil, err
	}

	go pollKeys(screen, tw)

	if err := tw.Start(ctx, nil); err != nil {
		return r, err
	}
	return r, tw.Wait()
}

// pollKeys cancels tw on a quit key. It returns when the screen is finalised
// or the tween has stopped.
func pollKeys(screen tcell.Screen, tw *tween.Tween) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case <-tw.Done():
			return
		default:
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			if isQuitKey(ev) {
				_ = tw.Cancel()
				return
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, ch := range text {
		screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
