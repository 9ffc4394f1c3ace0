package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dedupe-cli/internal/model"
	"github.com/sells-group/dedupe-cli/internal/resilience"
	sfpkg "github.com/sells-group/dedupe-cli/pkg/salesforce"
)

// SalesforceStore implements Store directly against the CRM's Lead object,
// for orgs that review duplicates in place rather than on an exported copy.
// All calls go through a circuit breaker so a down CRM fails fast.
//
// Salesforce has no cross-record transactions; MergeContacts applies the
// patch before the delete. The patch only fills empty fields, so re-running
// a merge after a partial failure is safe.
type SalesforceStore struct {
	client  sfpkg.Client
	breaker *resilience.CircuitBreaker
}

// NewSalesforce creates a SalesforceStore around the given API client.
func NewSalesforce(client sfpkg.Client) *SalesforceStore {
	return &SalesforceStore{
		client: client,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			ShouldTrip: resilience.IsTransient,
		}),
	}
}

// sfPatchFields maps patch columns to Lead API field names.
var sfPatchFields = map[string]string{
	"first_name":     "FirstName",
	"last_name":      "LastName",
	"email":          "Email",
	"phone":          "Phone",
	"company":        "Company",
	"company_domain": "Website",
	"profile_url":    "LinkedIn_Profile__c",
}

// ListContacts returns every non-converted lead. The CRM org is the
// workspace; workspaceID is recorded on the returned contacts but not used
// as a filter.
func (s *SalesforceStore) ListContacts(ctx context.Context, workspaceID string) ([]model.Contact, error) {
	leads, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) ([]sfpkg.Lead, error) {
		return sfpkg.ListLeads(ctx, s.client)
	})
	if err != nil {
		return nil, err
	}

	contacts := make([]model.Contact, len(leads))
	for i, l := range leads {
		contacts[i] = leadToContact(l, workspaceID)
	}
	return contacts, nil
}

func (s *SalesforceStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	lead, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (*sfpkg.Lead, error) {
		return sfpkg.FindLeadByID(ctx, s.client, id)
	})
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrNotFound
	}
	c := leadToContact(*lead, "")
	return &c, nil
}

func (s *SalesforceStore) CreateContact(ctx context.Context, c model.Contact) error {
	fields := map[string]any{
		"FirstName":           c.FirstName,
		"LastName":            c.LastName,
		"Email":               c.Email,
		"Phone":               c.Phone,
		"Company":             c.Company,
		"Website":             c.CompanyDomain,
		"LinkedIn_Profile__c": c.ProfileURL,
	}
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		_, err := sfpkg.CreateLead(ctx, s.client, fields)
		return err
	})
}

func (s *SalesforceStore) CreateContacts(ctx context.Context, contacts []model.Contact) (int64, error) {
	var n int64
	for _, c := range contacts {
		if err := s.CreateContact(ctx, c); err != nil {
			return n, eris.Wrapf(err, "sf store: create contact %s", c.ID)
		}
		n++
	}
	return n, nil
}

func (s *SalesforceStore) UpdateContact(ctx context.Context, id string, patch model.ContactPatch) error {
	fields := sfFields(patch)
	if len(fields) == 0 {
		return nil
	}
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return sfpkg.UpdateLead(ctx, s.client, id, fields)
	})
}

func (s *SalesforceStore) DeleteContact(ctx context.Context, id string) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return sfpkg.DeleteLead(ctx, s.client, id)
	})
}

func (s *SalesforceStore) MergeContacts(ctx context.Context, keepID string, patch model.ContactPatch, loserID string) error {
	if err := s.UpdateContact(ctx, keepID, patch); err != nil {
		return eris.Wrapf(err, "sf store: merge update %s", keepID)
	}
	if err := s.DeleteContact(ctx, loserID); err != nil {
		return eris.Wrapf(err, "sf store: merge delete %s", loserID)
	}
	return nil
}

// Ping issues a minimal query to verify connectivity and auth.
func (s *SalesforceStore) Ping(ctx context.Context) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		var out []struct {
			ID string `json:"Id"`
		}
		return s.client.Query(ctx, "SELECT Id FROM Lead LIMIT 1", &out)
	})
}

// Migrate is a no-op; the Lead schema is managed in Salesforce.
func (s *SalesforceStore) Migrate(ctx context.Context) error { return nil }

func (s *SalesforceStore) Close() error { return nil }

func sfFields(patch model.ContactPatch) map[string]any {
	fields := make(map[string]any)
	for _, f := range model.MergeableFields {
		if v := patchValue(patch, f.Column); v != nil {
			fields[sfPatchFields[f.Column]] = *v
		}
	}
	return fields
}

func leadToContact(l sfpkg.Lead, workspaceID string) model.Contact {
	return model.Contact{
		ID:            l.ID,
		WorkspaceID:   workspaceID,
		FirstName:     l.FirstName,
		LastName:      l.LastName,
		Email:         l.Email,
		Phone:         l.Phone,
		Company:       l.Company,
		CompanyDomain: l.Website,
		ProfileURL:    l.ProfileURL,
	}
}
