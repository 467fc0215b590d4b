// Package store persists CRM customers and the research settings row. The
// research pipeline only reads customers; settings change through an
// explicit save.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/vendora-crm/research-service/internal/model"
)

// settingsKey is the singleton key for the persisted research settings.
const settingsKey = "research"

// maxSiteListEntries caps the vendor/brand website lists on save.
const maxSiteListEntries = 30

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = eris.New("store: not found")

// CustomerFilter bounds the customer pool by geography.
type CustomerFilter struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
}

// Store defines the persistence interface for the research service.
type Store interface {
	// Customers (read-only for the pipeline)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context, filter CustomerFilter, limit int) ([]model.Customer, error)

	// Research settings (singleton row)
	GetSettings(ctx context.Context) (*model.ResearchSettings, error)
	SaveSettings(ctx context.Context, in model.ResearchSettings) (*model.ResearchSettings, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
