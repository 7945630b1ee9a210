// Package easing maps normalized progress onto interpolation multipliers.
//
// Every curve is a pure function of progress in [0,1]. The formulas are the
// standard ones published at https://easings.net. BACK and ELASTIC curves
// overshoot the [0,1] range by construction.
//
// LINEAR is special: its multiplier is the constant 1 because linear tweens
// are advanced by a precomputed per-tick step rather than by a multiplier.
package easing

import (
	"math"
	"strings"
)

// Curve identifies an easing curve, e.g. "QUAD_IN_OUT".
type Curve string

// Supported curves.
const (
	Linear Curve = "LINEAR"

	SineIn    Curve = "SINE_IN"
	SineOut   Curve = "SINE_OUT"
	SineInOut Curve = "SINE_IN_OUT"

	QuadIn    Curve = "QUAD_IN"
	QuadOut   Curve = "QUAD_OUT"
	QuadInOut Curve = "QUAD_IN_OUT"

	CubicIn    Curve = "CUBIC_IN"
	CubicOut   Curve = "CUBIC_OUT"
	CubicInOut Curve = "CUBIC_IN_OUT"

	QuartIn    Curve = "QUART_IN"
	QuartOut   Curve = "QUART_OUT"
	QuartInOut Curve = "QUART_IN_OUT"

	QuintIn    Curve = "QUINT_IN"
	QuintOut   Curve = "QUINT_OUT"
	QuintInOut Curve = "QUINT_IN_OUT"

	ExpoIn    Curve = "EXPO_IN"
	ExpoOut   Curve = "EXPO_OUT"
	ExpoInOut Curve = "EXPO_IN_OUT"

	CircIn    Curve = "CIRC_IN"
	CircOut   Curve = "CIRC_OUT"
	CircInOut Curve = "CIRC_IN_OUT"

	BackIn    Curve = "BACK_IN"
	BackOut   Curve = "BACK_OUT"
	BackInOut Curve = "BACK_IN_OUT"

	ElasticIn    Curve = "ELASTIC_IN"
	ElasticOut   Curve = "ELASTIC_OUT"
	ElasticInOut Curve = "ELASTIC_IN_OUT"

	BounceIn    Curve = "BOUNCE_IN"
	BounceOut   Curve = "BOUNCE_OUT"
	BounceInOut Curve = "BOUNCE_IN_OUT"
)

// Families lists the curve families that come in _IN, _OUT and _IN_OUT variants.
var Families = []string{
	"SINE", "QUAD", "CUBIC", "QUART", "QUINT",
	"EXPO", "CIRC", "BACK", "ELASTIC", "BOUNCE",
}

// Curve constants used by BACK and ELASTIC.
const (
	backC1    = 1.70158
	backC2    = backC1 * 1.525
	backC3    = backC1 + 1
	elasticC4 = (2 * math.Pi) / 3
	elasticC5 = (2 * math.Pi) / 4.5
)

// order is the declaration order reported by All.
var order = []Curve{
	Linear,
	SineIn, SineOut, SineInOut,
	QuadIn, QuadOut, QuadInOut,
	CubicIn, CubicOut, CubicInOut,
	QuartIn, QuartOut, QuartInOut,
	QuintIn, QuintOut, QuintInOut,
	ExpoIn, ExpoOut, ExpoInOut,
	CircIn, CircOut, CircInOut,
	BackIn, BackOut, BackInOut,
	ElasticIn, ElasticOut, ElasticInOut,
	BounceIn, BounceOut, BounceInOut,
}

var table = map[Curve]func(x float64) float64{
	Linear: func(float64) float64 { return 1 },

	SineIn:    func(x float64) float64 { return 1 - math.Cos((x*math.Pi)/2) },
	SineOut:   func(x float64) float64 { return math.Sin((x * math.Pi) / 2) },
	SineInOut: func(x float64) float64 { return -(math.Cos(math.Pi*x) - 1) / 2 },

	QuadIn:  func(x float64) float64 { return x * x },
	QuadOut: func(x float64) float64 { return 1 - (1-x)*(1-x) },
	QuadInOut: func(x float64) float64 {
		if x < 0.5 {
			return 2 * x * x
		}
		return 1 - math.Pow(-2*x+2, 2)/2
	},

	CubicIn:  func(x float64) float64 { return x * x * x },
	CubicOut: func(x float64) float64 { return 1 - math.Pow(1-x, 3) },
	CubicInOut: func(x float64) float64 {
		if x < 0.5 {
			return 4 * x * x * x
		}
		return 1 - math.Pow(-2*x+2, 3)/2
	},

	QuartIn:  func(x float64) float64 { return math.Pow(x, 4) },
	QuartOut: func(x float64) float64 { return 1 - math.Pow(1-x, 4) },
	QuartInOut: func(x float64) float64 {
		if x < 0.5 {
			return 8 * math.Pow(x, 4)
		}
		return 1 - math.Pow(-2*x+2, 4)/2
	},

	QuintIn:  func(x float64) float64 { return math.Pow(x, 5) },
	QuintOut: func(x float64) float64 { return 1 - math.Pow(1-x, 5) },
	QuintInOut: func(x float64) float64 {
		if x < 0.5 {
			return 16 * math.Pow(x, 5)
		}
		return 1 - math.Pow(-2*x+2, 5)/2
	},

	ExpoIn: func(x float64) float64 {
		if x == 0 {
			return 0
		}
		if x == 1 {
			return 1
		}
		return math.Pow(2, 10*x-10)
	},
	ExpoOut: func(x float64) float64 {
		if x == 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*x)
	},
	ExpoInOut: func(x float64) float64 {
		switch {
		case x == 0:
			return 0
		case x == 1:
			return 1
		case x < 0.5:
			return math.Pow(2, 20*x-10) / 2
		default:
			return (2 - math.Pow(2, -20*x+10)) / 2
		}
	},

	CircIn:  func(x float64) float64 { return 1 - math.Sqrt(1-math.Pow(x, 2)) },
	CircOut: func(x float64) float64 { return math.Sqrt(1 - math.Pow(x-1, 2)) },
	CircInOut: func(x float64) float64 {
		if x < 0.5 {
			return (1 - math.Sqrt(1-math.Pow(2*x, 2))) / 2
		}
		return (math.Sqrt(1-math.Pow(-2*x+2, 2)) + 1) / 2
	},

	BackIn:  func(x float64) float64 { return backC3*x*x*x - backC1*x*x },
	BackOut: func(x float64) float64 { return 1 + backC3*math.Pow(x-1, 3) + backC1*math.Pow(x-1, 2) },
	BackInOut: func(x float64) float64 {
		if x < 0.5 {
			return (math.Pow(2*x, 2) * ((backC2+1)*2*x - backC2)) / 2
		}
		return (math.Pow(2*x-2, 2)*((backC2+1)*(x*2-2)+backC2) + 2) / 2
	},

	ElasticIn: func(x float64) float64 {
		switch x {
		case 0:
			return 0
		case 1:
			return 1
		}
		return -math.Pow(2, 10*x-10) * math.Sin((x*10-10.75)*elasticC4)
	},
	ElasticOut: func(x float64) float64 {
		switch x {
		case 0:
			return 0
		case 1:
			return 1
		}
		return math.Pow(2, -10*x)*math.Sin((x*10-0.75)*elasticC4) + 1
	},
	ElasticInOut: func(x float64) float64 {
		switch {
		case x == 0:
			return 0
		case x == 1:
			return 1
		case x < 0.5:
			return -(math.Pow(2, 20*x-10) * math.Sin((20*x-11.125)*elasticC5)) / 2
		default:
			return (math.Pow(2, -20*x+10)*math.Sin((20*x-11.125)*elasticC5))/2 + 1
		}
	},

	BounceIn:  func(x float64) float64 { return 1 - bounceOut(1-x) },
	BounceOut: bounceOut,
	BounceInOut: func(x float64) float64 {
		if x < 0.5 {
			return (1 - bounceOut(1-2*x)) / 2
		}
		return (1 + bounceOut(2*x-1)) / 2
	},
}

// bounceOut is the four-piece bounce approximation shared by the BOUNCE family.
func bounceOut(x float64) float64 {
	const (
		n1 = 7.5625
		d1 = 2.75
	)

	switch {
	case x < 1/d1:
		return n1 * x * x
	case x < 2/d1:
		x -= 1.5 / d1
		return n1*x*x + 0.75
	case x < 2.5/d1:
		x -= 2.25 / d1
		return n1*x*x + 0.9375
	default:
		x -= 2.625 / d1
		return n1*x*x + 0.984375
	}
}

// Multiplier evaluates curve at progress x.
// Unknown curves are treated as Linear.
func Multiplier(curve Curve, x float64) float64 {
	fn, ok := table[curve]
	if !ok {
		return 1
	}
	return fn(x)
}

// Parse normalises name (case and surrounding space insensitive) into a Curve.
// The boolean reports whether the name was recognised; unknown names map to Linear.
func Parse(name string) (Curve, bool) {
	c := Curve(strings.ToUpper(strings.TrimSpace(name)))
	if c == "" {
		return Linear, true
	}
	if _, ok := table[c]; !ok {
		return Linear, false
	}
	return c, true
}

// Known reports whether curve is a supported identifier.
func Known(curve Curve) bool {
	_, ok := table[curve]
	return ok
}

// All returns every supported curve, Linear first, then each family's
// _IN, _OUT and _IN_OUT variants.
func All() []Curve {
	out := make([]Curve, len(order))
	copy(out, order)
	return out
}

// Sample evaluates curve at steps+1 evenly spaced progress points from 0 to 1.
// For Linear the returned values are the progress points themselves, which is
// the shape a linear tween traces even though its multiplier is constant.
func Sample(curve Curve, steps int) []float64 {
	if steps < 1 {
		steps = 1
	}
	out := make([]float64, steps+1)
	for i := 0; i <= steps; i++ {
		x := float64(i) / float64(steps)
		if curve == Linear || !Known(curve) {
			out[i] = x
			continue
		}
		out[i] = Multiplier(curve, x)
	}
	return out
}
