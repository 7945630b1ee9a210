package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/tween/internal/ir"
)

// SampleView is the output form of one delivered sample.
type SampleView struct {
	Tick    int         `json:"tick"`
	Elapsed string      `json:"elapsed"`
	Final   bool        `json:"final,omitempty"`
	Values  ir.ValueSet `json:"values"`
}

func sampleViews(samples []ir.Sample) []SampleView {
	views := make([]SampleView, len(samples))
	for i, s := range samples {
		views[i] = SampleView{
			Tick:    s.Tick,
			Elapsed: s.Elapsed.String(),
			Final:   s.Final,
			Values:  s.Values,
		}
	}
	return views
}

// formatSample renders one sample line, e.g. "[3] 20ms {x=60 y=-2}".
func formatSample(s ir.Sample) string {
	suffix := ""
	if s.Final {
		suffix = " (final)"
	}
	return fmt.Sprintf("[%d] %s %s%s", s.Tick, s.Elapsed, formatValues(s.Values), suffix)
}

// formatValues renders values with sorted keys.
func formatValues(vs ir.ValueSet) string {
	parts := make([]string, 0, len(vs))
	for _, k := range vs.SortedKeys() {
		parts = append(parts, k+"="+strconv.FormatFloat(vs[k], 'g', -1, 64))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// truncateID shortens a run ID for table output.
func truncateID(id string) string {
	if len(id) <= 13 {
		return id
	}
	return id[:13] + "..."
}
