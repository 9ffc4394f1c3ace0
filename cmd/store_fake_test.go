package main

import (
	"context"
	"errors"
	"sync"

	"github.com/sells-group/dedupe-cli/internal/model"
	"github.com/sells-group/dedupe-cli/internal/store"
)

// fakeStore is an in-memory store.Store for command tests.
type fakeStore struct {
	mu          sync.Mutex
	contacts    map[string]model.Contact
	pingErr     error
	failDeletes int // fail this many DeleteContact calls
}

func newFakeStore(contacts ...model.Contact) *fakeStore {
	f := &fakeStore{contacts: make(map[string]model.Contact)}
	for _, c := range contacts {
		f.contacts[c.ID] = c
	}
	return f
}

func (f *fakeStore) ListContacts(ctx context.Context, workspaceID string) ([]model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Contact
	for _, c := range f.contacts {
		if c.WorkspaceID == workspaceID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (f *fakeStore) CreateContact(ctx context.Context, c model.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts[c.ID] = c
	return nil
}

func (f *fakeStore) CreateContacts(ctx context.Context, contacts []model.Contact) (int64, error) {
	for _, c := range contacts {
		_ = f.CreateContact(ctx, c)
	}
	return int64(len(contacts)), nil
}

func (f *fakeStore) UpdateContact(ctx context.Context, id string, patch model.ContactPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return store.ErrNotFound
	}
	applyTestPatch(&c, patch)
	f.contacts[id] = c
	return nil
}

func (f *fakeStore) DeleteContact(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDeletes > 0 {
		f.failDeletes--
		return errors.New("store offline")
	}
	if _, ok := f.contacts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.contacts, id)
	return nil
}

func (f *fakeStore) MergeContacts(ctx context.Context, keepID string, patch model.ContactPatch, loserID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	keep, ok := f.contacts[keepID]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := f.contacts[loserID]; !ok {
		return store.ErrNotFound
	}
	applyTestPatch(&keep, patch)
	f.contacts[keepID] = keep
	delete(f.contacts, loserID)
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error    { return f.pingErr }
func (f *fakeStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                      { return nil }

func applyTestPatch(c *model.Contact, patch model.ContactPatch) {
	if patch.FirstName != nil {
		c.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		c.LastName = *patch.LastName
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.Company != nil {
		c.Company = *patch.Company
	}
	if patch.CompanyDomain != nil {
		c.CompanyDomain = *patch.CompanyDomain
	}
	if patch.ProfileURL != nil {
		c.ProfileURL = *patch.ProfileURL
	}
}
