package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullName(t *testing.T) {
	assert.Equal(t, "Jon Smith", Contact{FirstName: "Jon", LastName: "Smith"}.FullName())
	assert.Equal(t, "Jon", Contact{FirstName: "Jon"}.FullName())
	assert.Equal(t, "Smith", Contact{LastName: "Smith"}.FullName())
	assert.Equal(t, "", Contact{}.FullName())
}

func TestBuildMergePatch_FillsOnlyEmptyFields(t *testing.T) {
	keep := Contact{
		ID:        "k",
		FirstName: "Jon",
		Email:     "jon@acme.com",
	}
	discard := Contact{
		ID:         "d",
		FirstName:  "Jonathan",
		LastName:   "Smith",
		Email:      "jsmith@old.com",
		Phone:      "555-123-4567",
		Company:    "Acme Inc",
		ProfileURL: "linkedin.com/in/jsmith",
	}

	patch := BuildMergePatch(keep, discard)

	// Populated fields on keep are untouched.
	assert.Nil(t, patch.FirstName)
	assert.Nil(t, patch.Email)

	// Empty fields on keep are filled from discard.
	require.NotNil(t, patch.LastName)
	assert.Equal(t, "Smith", *patch.LastName)
	require.NotNil(t, patch.Phone)
	assert.Equal(t, "555-123-4567", *patch.Phone)
	require.NotNil(t, patch.Company)
	assert.Equal(t, "Acme Inc", *patch.Company)
	require.NotNil(t, patch.ProfileURL)
	assert.Equal(t, "linkedin.com/in/jsmith", *patch.ProfileURL)

	// Empty on both sides stays unset.
	assert.Nil(t, patch.CompanyDomain)
}

func TestBuildMergePatch_NothingToCopy(t *testing.T) {
	keep := Contact{FirstName: "A", LastName: "B", Email: "a@b.com", Phone: "1234567", Company: "C", CompanyDomain: "b.com", ProfileURL: "x"}
	discard := Contact{FirstName: "Z", LastName: "Y", Email: "z@y.com"}

	patch := BuildMergePatch(keep, discard)
	assert.True(t, patch.IsZero())
}

func TestContactPatchIsZero(t *testing.T) {
	assert.True(t, ContactPatch{}.IsZero())
	v := "x"
	assert.False(t, ContactPatch{Phone: &v}.IsZero())
}
