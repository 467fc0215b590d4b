package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-crm/research-service/internal/config"
	"github.com/vendora-crm/research-service/internal/model"
	"github.com/vendora-crm/research-service/internal/research"
	"github.com/vendora-crm/research-service/internal/store"
)

// memStore is a minimal in-memory Store for handler tests.
type memStore struct {
	customers []model.Customer
	settings  *model.ResearchSettings
}

func (m *memStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	for _, c := range m.customers {
		if c.ID == id {
			cc := c
			return &cc, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) ListCustomers(ctx context.Context, filter store.CustomerFilter, limit int) ([]model.Customer, error) {
	return m.customers, nil
}

func (m *memStore) GetSettings(ctx context.Context) (*model.ResearchSettings, error) {
	return m.settings, nil
}

func (m *memStore) SaveSettings(ctx context.Context, in model.ResearchSettings) (*model.ResearchSettings, error) {
	m.settings = &in
	return &in, nil
}

func (m *memStore) Migrate(ctx context.Context) error { return nil }
func (m *memStore) Close() error                      { return nil }

func newTestEnv(t *testing.T, st store.Store) *serviceEnv {
	t.Helper()
	cfg = &config.Config{
		Research: config.ResearchConfig{DefaultScope: model.ScopeRegion},
	}
	return &serviceEnv{
		Store:   st,
		Service: research.New(st, nil, nil, nil, cfg),
	}
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleResearch_BadBody(t *testing.T) {
	env := newTestEnv(t, &memStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader("{not json"))
	handleResearch(env)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResearch_MissingIdentity(t *testing.T) {
	env := newTestEnv(t, &memStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(`{}`))
	handleResearch(env)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "customerId or companyName")
}

func TestHandleResearch_UnknownCustomer(t *testing.T) {
	env := newTestEnv(t, &memStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(`{"customerId":"ghost"}`))
	handleResearch(env)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleResearch_OK(t *testing.T) {
	env := newTestEnv(t, &memStore{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/research",
		strings.NewReader(`{"companyName":"Acme AB","maxSimilar":5}`))
	handleResearch(env)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ResearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Acme AB", resp.Query.CompanyName)
	assert.Equal(t, 5, resp.Query.MaxSimilar)
	assert.NotNil(t, resp.SimilarCustomers)
	// No generative provider configured in the test env.
	assert.Contains(t, resp.AIError, "unavailable")
}

func TestHandleGetSettings_Defaults(t *testing.T) {
	env := newTestEnv(t, &memStore{})
	cfg.Research.VendorSites = []string{"https://vendor.se"}

	rec := httptest.NewRecorder()
	handleGetSettings(env)(rec, httptest.NewRequest(http.MethodGet, "/api/research/settings", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var settings model.ResearchSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, []string{"https://vendor.se"}, settings.VendorSites)
	assert.Equal(t, model.ScopeRegion, settings.DefaultScope)
}

func TestHandlePutSettings_RoundTrip(t *testing.T) {
	st := &memStore{}
	env := newTestEnv(t, st)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/research/settings",
		strings.NewReader(`{"vendorSites":["https://vendor.se"],"defaultScope":"country"}`))
	handlePutSettings(env)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, st.settings)
	assert.Equal(t, []string{"https://vendor.se"}, st.settings.VendorSites)

	rec = httptest.NewRecorder()
	handleGetSettings(env)(rec, httptest.NewRequest(http.MethodGet, "/api/research/settings", nil))
	var settings model.ResearchSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, "country", settings.DefaultScope)
}
