package tween

import (
	"context"
	"time"

	"github.com/roach88/tween/internal/easing"
	"github.com/roach88/tween/internal/ir"
)

// Config is the complete configuration of a tween.
//
// Build turns a Config into a READY tween in one call, so code that uses
// Config never sees a partially configured instance.
type Config struct {
	// Initial holds the starting values. Required.
	Initial ir.ValueSet

	// Target holds the end values, keyed exactly like Initial. Required.
	Target ir.ValueSet

	// Duration is the tween length. Must be positive.
	Duration time.Duration

	// Refresh is the tick interval. Zero means ir.DefaultRefresh.
	Refresh time.Duration

	// Easing selects the curve. Empty or unknown means easing.Linear.
	Easing easing.Curve

	// OnUpdate receives the values each tick. May be nil.
	OnUpdate UpdateFunc
}

// ConfigFromSpec converts a compiled definition into a Config.
func ConfigFromSpec(spec ir.TweenSpec, onUpdate UpdateFunc) Config {
	return Config{
		Initial:  spec.From,
		Target:   spec.To,
		Duration: spec.Duration,
		Refresh:  spec.Refresh,
		Easing:   easing.Curve(spec.Easing),
		OnUpdate: onUpdate,
	}
}

// Build runs New, SetTarget, SetEasing and OnUpdate from cfg and returns a
// READY tween. Options apply as for New; a non-zero cfg.Refresh applies
// before them.
func Build(cfg Config, opts ...Option) (*Tween, error) {
	if cfg.Refresh != 0 {
		opts = append([]Option{WithRefreshRate(cfg.Refresh)}, opts...)
	}

	t, err := New(cfg.Initial, opts...)
	if err != nil {
		return nil, err
	}
	if err := t.SetTarget(cfg.Target, cfg.Duration); err != nil {
		return nil, err
	}
	if err := t.SetEasing(cfg.Easing); err != nil {
		return nil, err
	}
	if err := t.OnUpdate(cfg.OnUpdate); err != nil {
		return nil, err
	}
	return t, nil
}

// Run builds a tween from cfg, starts it and waits for it to stop.
// It returns nil on completion, ctx.Err() if ctx is cancelled first, or the
// first build or callback error.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	t, err := Build(cfg, opts...)
	if err != nil {
		return err
	}
	if err := t.Start(ctx, nil); err != nil {
		return err
	}
	return t.Wait()
}
