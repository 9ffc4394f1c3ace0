// Package importer loads contact exports into a store, mapping whatever
// column headers the source CRM uses onto the contact schema.
package importer

import (
	"strings"

	"github.com/rotisserie/eris"
)

// columnMap maps contact fields to column indexes in the source rows.
// A value of -1 means the export does not carry that field.
type columnMap struct {
	id            int
	firstName     int
	lastName      int
	email         int
	phone         int
	company       int
	companyDomain int
	profileURL    int
}

// headerAliases maps normalized header names onto contact fields. CRM
// exports disagree wildly on naming, so each field accepts the variants
// seen in the wild.
var headerAliases = map[string]string{
	"id":          "id",
	"contact id":  "id",
	"lead id":     "id",
	"record id":   "id",
	"first name":  "first_name",
	"firstname":   "first_name",
	"given name":  "first_name",
	"fname":       "first_name",
	"last name":   "last_name",
	"lastname":    "last_name",
	"surname":     "last_name",
	"family name": "last_name",
	"lname":       "last_name",
	"email":       "email",
	"e-mail":      "email",
	"email address": "email",
	"phone":          "phone",
	"phone number":   "phone",
	"mobile":         "phone",
	"telephone":      "phone",
	"company":        "company",
	"company name":   "company",
	"organization":   "company",
	"organisation":   "company",
	"account":        "company",
	"account name":   "company",
	"employer":       "company",
	"company domain": "company_domain",
	"domain":         "company_domain",
	"website":        "company_domain",
	"web site":       "company_domain",
	"url":            "company_domain",
	"profile url":    "profile_url",
	"profile":        "profile_url",
	"linkedin":       "profile_url",
	"linkedin url":   "profile_url",
	"linkedin profile": "profile_url",
}

// normalizeHeader lowercases and collapses separators so "First_Name",
// "first-name" and "First Name" all map the same way.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", " ")
	h = strings.ReplaceAll(h, "-", " ")
	return strings.Join(strings.Fields(h), " ")
}

// mapHeader resolves the header row into a columnMap. The export must
// carry at least one field the matcher can work with.
func mapHeader(header []string) (columnMap, error) {
	cm := columnMap{
		id: -1, firstName: -1, lastName: -1, email: -1,
		phone: -1, company: -1, companyDomain: -1, profileURL: -1,
	}

	for i, raw := range header {
		field, ok := headerAliases[normalizeHeader(raw)]
		if !ok {
			continue
		}
		switch field {
		case "id":
			cm.id = i
		case "first_name":
			cm.firstName = i
		case "last_name":
			cm.lastName = i
		case "email":
			cm.email = i
		case "phone":
			cm.phone = i
		case "company":
			cm.company = i
		case "company_domain":
			cm.companyDomain = i
		case "profile_url":
			cm.profileURL = i
		}
	}

	if cm.email == -1 && cm.phone == -1 && cm.firstName == -1 && cm.lastName == -1 && cm.profileURL == -1 {
		return cm, eris.Errorf("importer: no usable columns in header %v", header)
	}
	return cm, nil
}

// cell returns the column value for a row, tolerating short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
