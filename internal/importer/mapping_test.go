package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"First Name", "first name"},
		{"first_name", "first name"},
		{"FIRST-NAME", "first name"},
		{"  Email  Address ", "email address"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHeader(tt.in), tt.in)
	}
}

func TestMapHeader_Variants(t *testing.T) {
	cm, err := mapHeader([]string{"Lead ID", "FirstName", "Surname", "E-Mail", "Mobile", "Account Name", "Website", "LinkedIn Profile"})
	require.NoError(t, err)

	assert.Equal(t, 0, cm.id)
	assert.Equal(t, 1, cm.firstName)
	assert.Equal(t, 2, cm.lastName)
	assert.Equal(t, 3, cm.email)
	assert.Equal(t, 4, cm.phone)
	assert.Equal(t, 5, cm.company)
	assert.Equal(t, 6, cm.companyDomain)
	assert.Equal(t, 7, cm.profileURL)
}

func TestMapHeader_UnknownColumnsIgnored(t *testing.T) {
	cm, err := mapHeader([]string{"Email", "Lead Score", "Owner"})
	require.NoError(t, err)
	assert.Equal(t, 0, cm.email)
	assert.Equal(t, -1, cm.company)
}

func TestMapHeader_NoUsableColumns(t *testing.T) {
	_, err := mapHeader([]string{"Lead Score", "Owner", "Created Date"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable columns")
}

func TestCell_ShortRow(t *testing.T) {
	row := []string{"a", " b "}
	assert.Equal(t, "a", cell(row, 0))
	assert.Equal(t, "b", cell(row, 1))
	assert.Equal(t, "", cell(row, 5))
	assert.Equal(t, "", cell(row, -1))
}
