package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dedupe-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func seedContact(t *testing.T, s *SQLiteStore, c model.Contact) {
	t.Helper()
	if c.WorkspaceID == "" {
		c.WorkspaceID = "ws1"
	}
	require.NoError(t, s.CreateContact(context.Background(), c))
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	seedContact(t, s, model.Contact{
		ID: "c1", FirstName: "Jon", LastName: "Smith",
		Email: "jon@acme.com", Company: "Acme",
	})

	got, err := s.GetContact(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Jon", got.FirstName)
	assert.Equal(t, "jon@acme.com", got.Email)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLiteStore_GetContact_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetContact(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListContacts_ScopedToWorkspace(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	seedContact(t, s, model.Contact{ID: "a", WorkspaceID: "ws1", LastName: "A"})
	seedContact(t, s, model.Contact{ID: "b", WorkspaceID: "ws1", LastName: "B"})
	seedContact(t, s, model.Contact{ID: "x", WorkspaceID: "ws2", LastName: "X"})

	contacts, err := s.ListContacts(ctx, "ws1")
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "a", contacts[0].ID)
	assert.Equal(t, "b", contacts[1].ID)

	contacts, err = s.ListContacts(ctx, "ws3")
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestSQLiteStore_CreateContacts_Bulk(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := s.CreateContacts(ctx, []model.Contact{
		{ID: "c1", WorkspaceID: "ws1", LastName: "One"},
		{ID: "c2", WorkspaceID: "ws1", LastName: "Two"},
		{ID: "c3", WorkspaceID: "ws1", LastName: "Three"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	contacts, err := s.ListContacts(ctx, "ws1")
	require.NoError(t, err)
	assert.Len(t, contacts, 3)
}

func TestSQLiteStore_CreateContacts_DuplicateIDRollsBack(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.CreateContacts(ctx, []model.Contact{
		{ID: "c1", WorkspaceID: "ws1", LastName: "One"},
		{ID: "c1", WorkspaceID: "ws1", LastName: "Dup"},
	})
	require.Error(t, err)

	contacts, err := s.ListContacts(ctx, "ws1")
	require.NoError(t, err)
	assert.Empty(t, contacts, "failed bulk insert must not leave partial rows")
}

func TestSQLiteStore_UpdateContact(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	seedContact(t, s, model.Contact{ID: "c1", LastName: "Smith"})

	phone := "5551234567"
	require.NoError(t, s.UpdateContact(ctx, "c1", model.ContactPatch{Phone: &phone}))

	got, err := s.GetContact(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "5551234567", got.Phone)
	assert.Equal(t, "Smith", got.LastName, "unset fields untouched")
}

func TestSQLiteStore_UpdateContact_NotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	phone := "5551234567"
	err := s.UpdateContact(context.Background(), "missing", model.ContactPatch{Phone: &phone})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_DeleteContact(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	seedContact(t, s, model.Contact{ID: "c1", LastName: "Smith"})
	require.NoError(t, s.DeleteContact(ctx, "c1"))

	_, err := s.GetContact(ctx, "c1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteContact(ctx, "c1"), ErrNotFound)
}

func TestSQLiteStore_MergeContacts(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	seedContact(t, s, model.Contact{ID: "keep", FirstName: "Jon", Email: "jon@acme.com"})
	seedContact(t, s, model.Contact{ID: "loser", FirstName: "Jonathan", LastName: "Smith", Phone: "5551234567"})

	keep, err := s.GetContact(ctx, "keep")
	require.NoError(t, err)
	loser, err := s.GetContact(ctx, "loser")
	require.NoError(t, err)

	patch := model.BuildMergePatch(*keep, *loser)
	require.NoError(t, s.MergeContacts(ctx, "keep", patch, "loser"))

	merged, err := s.GetContact(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "Jon", merged.FirstName, "populated field never overwritten")
	assert.Equal(t, "Smith", merged.LastName)
	assert.Equal(t, "5551234567", merged.Phone)
	assert.Equal(t, "jon@acme.com", merged.Email)

	_, err = s.GetContact(ctx, "loser")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_MergeContacts_MissingLoserLeavesKeepUntouched(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	seedContact(t, s, model.Contact{ID: "keep", FirstName: "Jon"})

	phone := "5551234567"
	err := s.MergeContacts(ctx, "keep", model.ContactPatch{Phone: &phone}, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetContact(ctx, "keep")
	require.NoError(t, err)
	assert.Empty(t, got.Phone, "patch must roll back when delete fails")
}

func TestSQLiteStore_Ping(t *testing.T) {
	s := newTestSQLiteStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
