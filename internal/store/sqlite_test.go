package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-crm/research-service/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_CustomerRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	pot := 80.0
	id, err := s.InsertCustomer(ctx, model.Customer{
		Name:           "Acme AB",
		Country:        "Sweden",
		Region:         "Stockholm",
		Industry:       "Electronics",
		PotentialScore: &pot,
		Website:        "https://acme.se",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Acme AB", got.Name)
	assert.Equal(t, "Stockholm", got.Region)
	require.NotNil(t, got.PotentialScore)
	assert.Equal(t, 80.0, *got.PotentialScore)
}

func TestSQLiteStore_GetCustomer_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetCustomer(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteStore_ListCustomers_Filter(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for _, c := range []model.Customer{
		{Name: "Acme AB", Country: "Sweden", Region: "Stockholm"},
		{Name: "Beta AB", Country: "Sweden", Region: "Skane"},
		{Name: "Gamma AS", Country: "Norway", Region: "Oslo"},
	} {
		_, err := s.InsertCustomer(ctx, c)
		require.NoError(t, err)
	}

	swedish, err := s.ListCustomers(ctx, CustomerFilter{Country: "Sweden"}, 0)
	require.NoError(t, err)
	require.Len(t, swedish, 2)
	assert.Equal(t, "Acme AB", swedish[0].Name)
	assert.Equal(t, "Beta AB", swedish[1].Name)

	stockholm, err := s.ListCustomers(ctx, CustomerFilter{Country: "Sweden", Region: "Stockholm"}, 0)
	require.NoError(t, err)
	require.Len(t, stockholm, 1)

	limited, err := s.ListCustomers(ctx, CustomerFilter{}, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLiteStore_SettingsRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	absent, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, absent)

	saved, err := s.SaveSettings(ctx, model.ResearchSettings{
		VendorSites:  []string{"https://vendor.se", " https://vendor.se "},
		BrandSites:   []string{"https://brand.se"},
		DefaultScope: "country",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://vendor.se"}, saved.VendorSites)

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"https://vendor.se"}, got.VendorSites)
	assert.Equal(t, []string{"https://brand.se"}, got.BrandSites)
	assert.Equal(t, "country", got.DefaultScope)

	// Second save overwrites the singleton row.
	_, err = s.SaveSettings(ctx, model.ResearchSettings{DefaultScope: "region"})
	require.NoError(t, err)
	got, err = s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.VendorSites)
	assert.Equal(t, "region", got.DefaultScope)
}
