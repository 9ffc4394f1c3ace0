package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardRejectsOverlap(t *testing.T) {
	g := NewGuard()

	release, err := g.Acquire("a", "b")
	require.NoError(t, err)

	_, err = g.Acquire("b", "c")
	assert.ErrorIs(t, err, ErrRecordBusy)

	release()

	release2, err := g.Acquire("b", "c")
	require.NoError(t, err)
	release2()
}

func TestGuardFailedAcquireTakesNothing(t *testing.T) {
	g := NewGuard()

	release, err := g.Acquire("a")
	require.NoError(t, err)
	defer release()

	// c must not stay reserved after the overlapping acquire fails.
	_, err = g.Acquire("c", "a")
	require.ErrorIs(t, err, ErrRecordBusy)

	release2, err := g.Acquire("c")
	require.NoError(t, err)
	release2()
}

func TestGuardDisjointRecordsProceed(t *testing.T) {
	g := NewGuard()

	r1, err := g.Acquire("a", "b")
	require.NoError(t, err)
	defer r1()

	r2, err := g.Acquire("c", "d")
	require.NoError(t, err)
	defer r2()
}
