package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Lead represents the Salesforce Lead fields the dedupe tool reads and
// writes. LinkedIn_Profile__c is the org's custom profile-URL field.
type Lead struct {
	ID         string `json:"Id" salesforce:"Id"`
	FirstName  string `json:"FirstName" salesforce:"FirstName"`
	LastName   string `json:"LastName" salesforce:"LastName"`
	Email      string `json:"Email" salesforce:"Email"`
	Phone      string `json:"Phone" salesforce:"Phone"`
	Company    string `json:"Company" salesforce:"Company"`
	Website    string `json:"Website" salesforce:"Website"`
	ProfileURL string `json:"LinkedIn_Profile__c" salesforce:"LinkedIn_Profile__c"`
}

// leadFields are the SOQL fields selected for Lead queries.
var leadFields = []string{
	"Id", "FirstName", "LastName", "Email", "Phone",
	"Company", "Website", "LinkedIn_Profile__c",
}

// ListLeads queries all non-converted leads.
func ListLeads(ctx context.Context, c Client) ([]Lead, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE IsConverted = false",
		strings.Join(leadFields, ", "),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, "sf: list leads")
	}
	return leads, nil
}

// FindLeadByID queries a single lead. Returns nil when no lead matches.
func FindLeadByID(ctx context.Context, c Client, id string) (*Lead, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE Id = '%s' LIMIT 1",
		strings.Join(leadFields, ", "),
		escapeSoql(id),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find lead %s", id))
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// UpdateLead updates a Lead record with the given fields.
func UpdateLead(ctx context.Context, c Client, leadID string, fields map[string]any) error {
	if leadID == "" {
		return eris.New("sf: lead id is required")
	}
	if len(fields) == 0 {
		return eris.New("sf: no fields to update")
	}
	if err := c.UpdateOne(ctx, "Lead", leadID, fields); err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: update lead %s", leadID))
	}
	return nil
}

// DeleteLead deletes a Lead record.
func DeleteLead(ctx context.Context, c Client, leadID string) error {
	if leadID == "" {
		return eris.New("sf: lead id is required")
	}
	if err := c.DeleteOne(ctx, "Lead", leadID); err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: delete lead %s", leadID))
	}
	return nil
}

// CreateLead creates a Lead and returns the new Salesforce ID. Company and
// LastName are required by the Lead object.
func CreateLead(ctx context.Context, c Client, fields map[string]any) (string, error) {
	if fields["LastName"] == nil || fields["LastName"] == "" {
		return "", eris.New("sf: lead LastName is required")
	}
	if fields["Company"] == nil || fields["Company"] == "" {
		return "", eris.New("sf: lead Company is required")
	}
	id, err := c.InsertOne(ctx, "Lead", fields)
	if err != nil {
		return "", eris.Wrap(err, "sf: create lead")
	}
	return id, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
