package review

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/dedupe-cli/internal/model"
	"github.com/sells-group/dedupe-cli/internal/store"
)

// ErrRecordBusy is returned when a resolution action targets a record that
// already has a mutation in flight.
var ErrRecordBusy = eris.New("review: record has a mutation in flight")

// Reviewer executes operator resolution actions against the contact store
// and advances the session state. One reviewer serves one operator session;
// the in-flight guard only protects against double-triggering the same
// action, not concurrent operators.
type Reviewer struct {
	store store.Store
	log   *zap.Logger

	mu       sync.Mutex
	state    State
	inflight map[string]bool
}

// NewReviewer creates a reviewer over the scan result.
func NewReviewer(st store.Store, pairs []model.CandidatePair) *Reviewer {
	return &Reviewer{
		store:    st,
		log:      zap.L().With(zap.String("component", "reviewer")),
		state:    NewState(pairs),
		inflight: make(map[string]bool),
	}
}

// State returns a snapshot of the session state.
func (r *Reviewer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

// KeepBoth resolves the pair with no data mutation. Acting on an unknown or
// already-resolved pair is a no-op: the pair may have been cascaded away by
// an earlier delete.
func (r *Reviewer) KeepBoth(key model.PairKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.state.Find(key); !ok {
		return
	}
	r.state = r.state.resolve(key)
	r.log.Info("pair kept", zap.String("pair", key.Lo+"/"+key.Hi))
}

// DeleteOne removes loserID from the store, resolves the pair, and drops
// every other pending pair that references the deleted record. On store
// failure the session state is unchanged.
func (r *Reviewer) DeleteOne(ctx context.Context, key model.PairKey, loserID string) error {
	pair, release, err := r.begin(key)
	if err != nil || pair == nil {
		return err
	}
	defer release()

	if _, ok := pair.Other(loserID); !ok {
		return eris.Errorf("review: contact %s is not part of the pair", loserID)
	}

	if err := r.store.DeleteContact(ctx, loserID); err != nil {
		return eris.Wrapf(err, "review: delete contact %s", loserID)
	}

	r.commit(key, loserID)
	r.log.Info("pair resolved by delete",
		zap.String("pair", key.Lo+"/"+key.Hi),
		zap.String("deleted", loserID),
	)
	return nil
}

// Merge copies the discarded record's populated fields onto keepID where
// keepID is empty, deletes the discarded record as part of the same store
// operation, resolves the pair, and cascades like DeleteOne. On failure no
// partial state is kept.
func (r *Reviewer) Merge(ctx context.Context, key model.PairKey, keepID string) error {
	pair, release, err := r.begin(key)
	if err != nil || pair == nil {
		return err
	}
	defer release()

	discard, ok := pair.Other(keepID)
	if !ok {
		return eris.Errorf("review: contact %s is not part of the pair", keepID)
	}
	var keep model.Contact
	if pair.A.ID == keepID {
		keep = pair.A
	} else {
		keep = pair.B
	}

	patch := model.BuildMergePatch(keep, discard)
	if err := r.store.MergeContacts(ctx, keepID, patch, discard.ID); err != nil {
		return eris.Wrapf(err, "review: merge %s into %s", discard.ID, keepID)
	}

	r.commit(key, discard.ID)
	r.log.Info("pair resolved by merge",
		zap.String("pair", key.Lo+"/"+key.Hi),
		zap.String("kept", keepID),
		zap.String("merged", discard.ID),
	)
	return nil
}

// begin validates the action and marks both pair members in flight. A nil
// pair with nil error means the action is a benign no-op. The returned
// release must be deferred.
func (r *Reviewer) begin(key model.PairKey) (*model.CandidatePair, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pair, ok := r.state.Find(key)
	if !ok {
		// Resolved earlier or cascaded away; not an error.
		return nil, nil, nil
	}

	if r.inflight[pair.A.ID] || r.inflight[pair.B.ID] {
		return nil, nil, ErrRecordBusy
	}
	r.inflight[pair.A.ID] = true
	r.inflight[pair.B.ID] = true

	release := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.inflight, pair.A.ID)
		delete(r.inflight, pair.B.ID)
	}
	return &pair, release, nil
}

// commit resolves the pair and cascades removal of the vanished record.
func (r *Reviewer) commit(key model.PairKey, removedID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = r.state.resolve(key).removeRecord(removedID)
}
