package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dedupe-cli/internal/match"
	"github.com/sells-group/dedupe-cli/internal/review"
)

func newTestReviewer(st *fakeStore) *review.Reviewer {
	contacts, _ := st.ListContacts(context.Background(), "ws1")
	return review.NewReviewer(st, match.FindDuplicates(contacts))
}

func TestRunReviewLoop_KeepBoth(t *testing.T) {
	st := newFakeStore(duplicateContacts()...)
	r := newTestReviewer(st)

	var out bytes.Buffer
	err := runReviewLoop(context.Background(), strings.NewReader("k\n"), &out, r)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Exact email match")
	assert.Contains(t, out.String(), "All pairs resolved.")
	assert.True(t, r.State().Done())
}

func TestRunReviewLoop_MergeFirst(t *testing.T) {
	st := newFakeStore(duplicateContacts()...)
	r := newTestReviewer(st)

	var out bytes.Buffer
	require.NoError(t, runReviewLoop(context.Background(), strings.NewReader("1\n"), &out, r))

	// Pair ordering depends on store iteration, so assert on the outcome:
	// one record left, carrying the union of the populated fields.
	remaining, err := st.ListContacts(context.Background(), "ws1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "jon@acme.com", remaining[0].Email)
	assert.Equal(t, "5551234567", remaining[0].Phone, "empty field filled from the loser")
	assert.True(t, r.State().Done())
}

func TestRunReviewLoop_DeleteSecond(t *testing.T) {
	st := newFakeStore(duplicateContacts()...)
	r := newTestReviewer(st)

	var out bytes.Buffer
	require.NoError(t, runReviewLoop(context.Background(), strings.NewReader("d2\n"), &out, r))

	remaining, err := st.ListContacts(context.Background(), "ws1")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
	assert.True(t, r.State().Done())
}

func TestRunReviewLoop_StoreFailureKeepsSessionAlive(t *testing.T) {
	st := newFakeStore(duplicateContacts()...)
	st.failDeletes = 1
	r := newTestReviewer(st)

	var out bytes.Buffer
	require.NoError(t, runReviewLoop(context.Background(), strings.NewReader("d2\nd2\n"), &out, r))

	assert.Contains(t, out.String(), "Action failed:")
	remaining, err := st.ListContacts(context.Background(), "ws1")
	require.NoError(t, err)
	assert.Len(t, remaining, 1, "retry after the failure succeeded")
	assert.True(t, r.State().Done())
}

func TestRunReviewLoop_Skip(t *testing.T) {
	st := newFakeStore(duplicateContacts()...)
	r := newTestReviewer(st)

	var out bytes.Buffer
	require.NoError(t, runReviewLoop(context.Background(), strings.NewReader("s\n"), &out, r))

	assert.Contains(t, out.String(), "Done. 1 pairs skipped.")
	assert.False(t, r.State().Done(), "skipped pairs stay pending")
}

func TestRunReviewLoop_Quit(t *testing.T) {
	st := newFakeStore(duplicateContacts()...)
	r := newTestReviewer(st)

	var out bytes.Buffer
	require.NoError(t, runReviewLoop(context.Background(), strings.NewReader("q\n"), &out, r))
	assert.False(t, r.State().Done(), "quit leaves pairs pending")
}

func TestRunReviewLoop_UnrecognizedThenResolve(t *testing.T) {
	st := newFakeStore(duplicateContacts()...)
	r := newTestReviewer(st)

	var out bytes.Buffer
	require.NoError(t, runReviewLoop(context.Background(), strings.NewReader("x\nk\n"), &out, r))

	assert.Contains(t, out.String(), "Unrecognized choice.")
	assert.True(t, r.State().Done())
}

func TestRunReviewLoop_EOF(t *testing.T) {
	st := newFakeStore(duplicateContacts()...)
	r := newTestReviewer(st)

	var out bytes.Buffer
	require.NoError(t, runReviewLoop(context.Background(), strings.NewReader(""), &out, r))
	assert.False(t, r.State().Done())
}
