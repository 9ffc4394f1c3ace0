package model

import "time"

// Contact represents a single lead/contact record within a workspace.
// Identity is the ID; all other fields are mutable business data owned by
// the surrounding CRM.
type Contact struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Company       string    `json:"company,omitempty"`
	CompanyDomain string    `json:"company_domain,omitempty"`
	ProfileURL    string    `json:"profile_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FullName returns "First Last" with single-space joining when both parts
// are present.
func (c Contact) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// ContactPatch holds a partial update to a contact. Nil fields are left
// untouched by the store.
type ContactPatch struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Company       *string `json:"company,omitempty"`
	CompanyDomain *string `json:"company_domain,omitempty"`
	ProfileURL    *string `json:"profile_url,omitempty"`
}

// IsZero reports whether the patch sets no fields.
func (p ContactPatch) IsZero() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Phone == nil && p.Company == nil && p.CompanyDomain == nil &&
		p.ProfileURL == nil
}

// MergeableField describes one scalar contact field that the merge workflow
// may copy from a discarded record onto a kept one. Keeping the schema as an
// explicit list makes the merge a checked loop over known columns rather
// than reflection over an open record shape.
type MergeableField struct {
	Column string
	Get    func(Contact) string
	Set    func(*ContactPatch, string)
}

// MergeableFields enumerates every field eligible for merge copying.
var MergeableFields = []MergeableField{
	{"first_name", func(c Contact) string { return c.FirstName }, func(p *ContactPatch, v string) { p.FirstName = &v }},
	{"last_name", func(c Contact) string { return c.LastName }, func(p *ContactPatch, v string) { p.LastName = &v }},
	{"email", func(c Contact) string { return c.Email }, func(p *ContactPatch, v string) { p.Email = &v }},
	{"phone", func(c Contact) string { return c.Phone }, func(p *ContactPatch, v string) { p.Phone = &v }},
	{"company", func(c Contact) string { return c.Company }, func(p *ContactPatch, v string) { p.Company = &v }},
	{"company_domain", func(c Contact) string { return c.CompanyDomain }, func(p *ContactPatch, v string) { p.CompanyDomain = &v }},
	{"profile_url", func(c Contact) string { return c.ProfileURL }, func(p *ContactPatch, v string) { p.ProfileURL = &v }},
}

// BuildMergePatch returns the patch that copies onto keep every mergeable
// field that is empty on keep and populated on discard. Populated fields on
// keep are never overwritten.
func BuildMergePatch(keep, discard Contact) ContactPatch {
	var patch ContactPatch
	for _, f := range MergeableFields {
		if f.Get(keep) == "" {
			if v := f.Get(discard); v != "" {
				f.Set(&patch, v)
			}
		}
	}
	return patch
}
