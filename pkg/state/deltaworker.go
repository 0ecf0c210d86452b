package state

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/no-svoboda/pkg/conditionals"
)

// DeltaWorker applies a list of effects to a NarrativeState.
type DeltaWorker struct {
	ns     *NarrativeState
	logger *slog.Logger
}

// NewDeltaWorker creates a worker bound to one state.
func NewDeltaWorker(ns *NarrativeState, logger *slog.Logger) *DeltaWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeltaWorker{ns: ns, logger: logger}
}

// Apply runs effects in order and returns the changes made. Every gate is
// evaluated against the state as it was before the first effect applies,
// so effects in one list cannot gate each other. The list is validated
// in full before anything is written.
func (dw *DeltaWorker) Apply(effects []Effect) ([]Change, error) {
	if dw.ns == nil {
		return nil, fmt.Errorf("narrative state cannot be nil")
	}

	active := make([]bool, len(effects))
	for i, e := range effects {
		if err := e.Check(); err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		active[i] = e.When == nil || conditionals.EvaluateWhen(*e.When, dw.ns)
	}

	var changes []Change
	for i, e := range effects {
		if !active[i] {
			dw.logger.Debug("Effect gated off", "field", e.Field, "op", e.Op)
			continue
		}
		applied, err := dw.applyOne(e)
		if err != nil {
			return changes, fmt.Errorf("effect %d: %w", i, err)
		}
		changes = append(changes, applied...)
	}
	return changes, nil
}

func (dw *DeltaWorker) applyOne(e Effect) ([]Change, error) {
	switch e.Op {
	case OpAdd:
		from, err := dw.ns.Int(e.Field)
		if err != nil {
			return nil, err
		}
		if err := dw.ns.Add(e.Field, e.Amount); err != nil {
			return nil, err
		}
		return []Change{{Field: e.Field, From: from, To: from + e.Amount}}, nil

	case OpSet:
		v := true
		if e.Value != nil {
			v = *e.Value
		}
		from, err := dw.ns.Bool(e.Field)
		if err != nil {
			return nil, err
		}
		if err := dw.ns.SetBool(e.Field, v); err != nil {
			return nil, err
		}
		return []Change{{Field: e.Field, From: from, To: v}}, nil

	case OpExclusive:
		group := GroupOf(e.Field)
		before := make([]bool, len(group))
		for i, f := range group {
			before[i], _ = dw.ns.Bool(f)
		}
		if err := dw.ns.SetExclusive(e.Field); err != nil {
			return nil, err
		}
		var changes []Change
		for i, f := range group {
			after := f == e.Field
			if before[i] != after {
				changes = append(changes, Change{Field: f, From: before[i], To: after})
			}
		}
		return changes, nil
	}
	return nil, fmt.Errorf("unknown effect op %q", e.Op)
}
