package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-crm/research-service/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func customerColumns() []string {
	return []string{"id", "name", "organization", "country", "region", "industry", "seller", "notes", "potential_score", "website"}
}

func TestPostgresStore_GetCustomer(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	pot := 75.0
	mock.ExpectQuery(`SELECT id, name, organization, country, region, industry, seller, notes, potential_score, website FROM customers WHERE id = \$1`).
		WithArgs("cust-1").
		WillReturnRows(pgxmock.NewRows(customerColumns()).
			AddRow("cust-1", "Acme AB", "Acme Group", "Sweden", "Stockholm", "Electronics", "Anna", "", &pot, "https://acme.se"))

	c, err := s.GetCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme AB", c.Name)
	assert.Equal(t, "Sweden", c.Country)
	require.NotNil(t, c.PotentialScore)
	assert.Equal(t, 75.0, *c.PotentialScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCustomer_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM customers WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetCustomer(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCustomers_Filtered(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM customers WHERE country = \$1 AND region = \$2 ORDER BY name LIMIT \$3`).
		WithArgs("Sweden", "Stockholm", 25).
		WillReturnRows(pgxmock.NewRows(customerColumns()).
			AddRow("cust-1", "Acme AB", "", "Sweden", "Stockholm", "Electronics", "", "", nil, "").
			AddRow("cust-2", "Beta AB", "", "Sweden", "Stockholm", "Retail", "", "", nil, ""))

	got, err := s.ListCustomers(context.Background(), CustomerFilter{Country: "Sweden", Region: "Stockholm"}, 25)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Acme AB", got[0].Name)
	assert.Nil(t, got[0].PotentialScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCustomers_Unfiltered(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM customers ORDER BY name`).
		WillReturnRows(pgxmock.NewRows(customerColumns()))

	got, err := s.ListCustomers(context.Background(), CustomerFilter{}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSettings_Absent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT value FROM research_settings WHERE key = \$1`).
		WithArgs(settingsKey).
		WillReturnError(pgx.ErrNoRows)

	settings, err := s.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Nil(t, settings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSettings(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT value FROM research_settings WHERE key = \$1`).
		WithArgs(settingsKey).
		WillReturnRows(pgxmock.NewRows([]string{"value"}).
			AddRow([]byte(`{"vendorSites":["https://vendor.se"],"brandSites":[],"defaultScope":"country"}`)))

	settings, err := s.GetSettings(context.Background())
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, []string{"https://vendor.se"}, settings.VendorSites)
	assert.Equal(t, "country", settings.DefaultScope)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSettings_Malformed(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT value FROM research_settings WHERE key = \$1`).
		WithArgs(settingsKey).
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`not json`)))

	_, err := s.GetSettings(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode settings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveSettings_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO research_settings .+ ON CONFLICT`).
		WithArgs(settingsKey, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := s.SaveSettings(context.Background(), model.ResearchSettings{
		VendorSites:  []string{" https://vendor.se ", "https://vendor.se"},
		DefaultScope: "everywhere",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://vendor.se"}, saved.VendorSites)
	assert.Equal(t, "region", saved.DefaultScope)
	assert.NoError(t, mock.ExpectationsWereMet())
}
