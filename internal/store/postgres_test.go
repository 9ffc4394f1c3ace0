package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dedupe-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func contactRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "workspace_id", "first_name", "last_name", "email", "phone",
		"company", "company_domain", "profile_url", "created_at", "updated_at",
	})
}

func TestPostgresStore_ListContacts(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM contacts WHERE workspace_id = \$1`).
		WithArgs("ws1").
		WillReturnRows(contactRows().
			AddRow("c1", "ws1", "Jon", "Smith", "jon@acme.com", "", "Acme", "", "", now, now).
			AddRow("c2", "ws1", "Ann", "Lee", "", "5551234567", "", "lee.com", "", now, now))

	contacts, err := s.ListContacts(context.Background(), "ws1")
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "c1", contacts[0].ID)
	assert.Equal(t, "jon@acme.com", contacts[0].Email)
	assert.Equal(t, "lee.com", contacts[1].CompanyDomain)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetContact_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM contacts WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetContact(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateContact(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	phone := "5551234567"
	mock.ExpectExec(`UPDATE contacts SET phone = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(phone, pgxmock.AnyArg(), "c1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateContact(context.Background(), "c1", model.ContactPatch{Phone: &phone})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateContact_EmptyPatchIsNoop(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	err := s.UpdateContact(context.Background(), "c1", model.ContactPatch{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteContact_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM contacts WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteContact(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MergeContacts_CommitsPatchAndDelete(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	phone := "5551234567"
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE contacts SET phone = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(phone, pgxmock.AnyArg(), "keep").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM contacts WHERE id = \$1`).
		WithArgs("loser").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := s.MergeContacts(context.Background(), "keep", model.ContactPatch{Phone: &phone}, "loser")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MergeContacts_RollsBackOnDeleteFailure(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	phone := "5551234567"
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE contacts SET phone = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(phone, pgxmock.AnyArg(), "keep").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM contacts WHERE id = \$1`).
		WithArgs("loser").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := s.MergeContacts(context.Background(), "keep", model.ContactPatch{Phone: &phone}, "loser")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MergeContacts_EmptyPatchSkipsUpdate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM contacts WHERE id = \$1`).
		WithArgs("loser").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := s.MergeContacts(context.Background(), "keep", model.ContactPatch{}, "loser")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateContact(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO contacts`).
		WithArgs("c1", "ws1", "Jon", "Smith", "jon@acme.com", "", "Acme", "", "",
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.CreateContact(context.Background(), model.Contact{
		ID: "c1", WorkspaceID: "ws1", FirstName: "Jon", LastName: "Smith",
		Email: "jon@acme.com", Company: "Acme",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildContactUpdate(t *testing.T) {
	email := "a@b.com"
	company := "Acme"

	sql, args := buildContactUpdate("c1", model.ContactPatch{Email: &email, Company: &company})
	assert.Equal(t, "UPDATE contacts SET email = $1, company = $2, updated_at = $3 WHERE id = $4", sql)
	require.Len(t, args, 4)
	assert.Equal(t, "a@b.com", args[0])
	assert.Equal(t, "Acme", args[1])
	assert.Equal(t, "c1", args[3])

	sql, args = buildContactUpdate("c1", model.ContactPatch{})
	assert.Empty(t, sql)
	assert.Nil(t, args)
}
