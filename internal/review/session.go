// Package review drives the interactive resolution workflow over candidate
// duplicate pairs: keep both, delete one side, or merge.
package review

import (
	"github.com/sells-group/dedupe-cli/internal/model"
)

// State is the in-session review position: which candidate pairs are still
// pending and which pair keys have been resolved. It is a value; reducers
// return an updated copy so the workflow is testable without a UI and the
// caller controls when state advances.
type State struct {
	pending  []model.CandidatePair
	resolved map[model.PairKey]bool
}

// NewState builds the initial state over a scan result.
func NewState(pairs []model.CandidatePair) State {
	pending := make([]model.CandidatePair, len(pairs))
	copy(pending, pairs)
	return State{
		pending:  pending,
		resolved: make(map[model.PairKey]bool),
	}
}

// Pending returns the unresolved pairs in scan order.
func (s State) Pending() []model.CandidatePair {
	out := make([]model.CandidatePair, len(s.pending))
	copy(out, s.pending)
	return out
}

// Find returns the pending pair with the given key.
func (s State) Find(key model.PairKey) (model.CandidatePair, bool) {
	for _, p := range s.pending {
		if p.Key() == key {
			return p, true
		}
	}
	return model.CandidatePair{}, false
}

// IsResolved reports whether the pair key has been resolved this session.
func (s State) IsResolved(key model.PairKey) bool {
	return s.resolved[key]
}

// Done reports whether no pairs remain pending.
func (s State) Done() bool {
	return len(s.pending) == 0
}

// resolve marks key resolved and drops it from pending.
func (s State) resolve(key model.PairKey) State {
	next := s.clone()
	next.resolved[key] = true
	next.pending = dropPairs(next.pending, func(p model.CandidatePair) bool {
		return p.Key() == key
	})
	return next
}

// removeRecord drops every pending pair that references the given contact
// id. Run after a delete or merge so the session never offers an action on
// a record that no longer exists.
func (s State) removeRecord(id string) State {
	next := s.clone()
	next.pending = dropPairs(next.pending, func(p model.CandidatePair) bool {
		return p.Key().Contains(id)
	})
	return next
}

func (s State) clone() State {
	pending := make([]model.CandidatePair, len(s.pending))
	copy(pending, s.pending)
	resolved := make(map[model.PairKey]bool, len(s.resolved))
	for k, v := range s.resolved {
		resolved[k] = v
	}
	return State{pending: pending, resolved: resolved}
}

func dropPairs(pairs []model.CandidatePair, drop func(model.CandidatePair) bool) []model.CandidatePair {
	kept := pairs[:0:0]
	for _, p := range pairs {
		if !drop(p) {
			kept = append(kept, p)
		}
	}
	return kept
}
