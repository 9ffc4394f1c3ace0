// Package store persists contact records behind a backend-neutral interface
// with Postgres, SQLite, and Salesforce implementations.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dedupe-cli/internal/model"
)

// ErrNotFound is returned when a contact id does not exist.
var ErrNotFound = eris.New("store: contact not found")

// Store defines the persistence interface for contact records. Merge is a
// distinct operation because the field copy and the row deletion must
// succeed or fail as a unit.
type Store interface {
	// Contacts
	ListContacts(ctx context.Context, workspaceID string) ([]model.Contact, error)
	GetContact(ctx context.Context, id string) (*model.Contact, error)
	CreateContact(ctx context.Context, c model.Contact) error
	CreateContacts(ctx context.Context, contacts []model.Contact) (int64, error)
	UpdateContact(ctx context.Context, id string, patch model.ContactPatch) error
	DeleteContact(ctx context.Context, id string) error

	// MergeContacts applies patch to keepID and deletes loserID atomically.
	MergeContacts(ctx context.Context, keepID string, patch model.ContactPatch, loserID string) error

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// patchColumns flattens a ContactPatch into parallel column/value slices
// using the mergeable-field schema. Shared by the SQL backends.
func patchColumns(patch model.ContactPatch) (cols []string, vals []any) {
	for _, f := range model.MergeableFields {
		if v := patchValue(patch, f.Column); v != nil {
			cols = append(cols, f.Column)
			vals = append(vals, *v)
		}
	}
	return cols, vals
}

func patchValue(p model.ContactPatch, column string) *string {
	switch column {
	case "first_name":
		return p.FirstName
	case "last_name":
		return p.LastName
	case "email":
		return p.Email
	case "phone":
		return p.Phone
	case "company":
		return p.Company
	case "company_domain":
		return p.CompanyDomain
	case "profile_url":
		return p.ProfileURL
	}
	return nil
}
