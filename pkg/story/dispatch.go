package story

import (
	"github.com/jwebster45206/no-svoboda/pkg/conditionals"
	"github.com/jwebster45206/no-svoboda/pkg/state"
)

// Match returns the index of the first case whose condition holds against
// the snapshot, or -1 when none does.
func (d *Dispatch) Match(snap state.Snapshot) int {
	for i, c := range d.Cases {
		if conditionals.EvaluateWhen(c.When, snap) {
			return i
		}
	}
	return -1
}

// Reads returns every field the dispatch's cases read.
func (d *Dispatch) Reads() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range d.Cases {
		for _, f := range c.When.Fields() {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
