package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-crm/research-service/internal/model"
)

func TestAnnotateExisting(t *testing.T) {
	customers := []model.Customer{
		{ID: "c1", Name: "Acme AB", Website: "https://www.acme.se"},
		{ID: "c2", Name: "Örebro Kök AB", Website: ""},
	}

	cands := []model.Candidate{
		{Name: "ACME", Website: "https://acme.se/"},
		{Name: "Orebro Kok AB"},
		{Name: "Fresh AB", Website: "https://fresh.se"},
	}

	got := AnnotateExisting(cands, customers)

	require.Len(t, got, 3)

	// Domain match beats the name mismatch.
	assert.True(t, got[0].AlreadyCustomer)
	assert.Equal(t, "c1", got[0].ExistingCustomerID)
	assert.Equal(t, "Acme AB", got[0].ExistingCustomerName)

	// Diacritics-insensitive name match.
	assert.True(t, got[1].AlreadyCustomer)
	assert.Equal(t, "c2", got[1].ExistingCustomerID)

	assert.False(t, got[2].AlreadyCustomer)
	assert.Empty(t, got[2].ExistingCustomerID)
}

func TestAnnotateExisting_FirstCustomerWins(t *testing.T) {
	customers := []model.Customer{
		{ID: "old", Name: "Acme AB"},
		{ID: "dup", Name: "Acme AB"},
	}
	cands := []model.Candidate{{Name: "acme ab"}}

	got := AnnotateExisting(cands, customers)

	require.Len(t, got, 1)
	assert.Equal(t, "old", got[0].ExistingCustomerID)
}

func TestAnnotateExisting_NoCustomers(t *testing.T) {
	cands := []model.Candidate{{Name: "Acme AB"}}
	got := AnnotateExisting(cands, nil)
	require.Len(t, got, 1)
	assert.False(t, got[0].AlreadyCustomer)
}

func TestSeedCandidates(t *testing.T) {
	seeds := []model.DiscoverySeed{
		{Name: "Acme AB", Website: "https://acme.se", SourceURL: "https://acme.se", SourceType: model.SourceSerper, Snippet: "phone cases"},
	}

	got := SeedCandidates(seeds)

	require.Len(t, got, 1)
	c := got[0]
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Acme AB", c.Name)
	assert.Equal(t, model.SourceSerper, c.SourceType)
	assert.Equal(t, model.ConfidenceLow, c.Confidence)
	assert.Equal(t, "phone cases", c.Reason)
	assert.Equal(t, 50.0, c.PotentialScore)
}
