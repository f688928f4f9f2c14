package storage

import (
	"context"
)

// Collection names an independently stored blob of records.
type Collection string

const (
	Deals         Collection = "deals"
	Expenses      Collection = "expenses"
	Activities    Collection = "activities"
	Settings      Collection = "settings"
	CategoryRules Collection = "category_rules"
)

// Collections lists every collection a provider may be asked for.
var Collections = []Collection{Deals, Expenses, Activities, Settings, CategoryRules}

//go:generate mockgen -source=provider.go -destination=provider_mock.go -package=storage
type Provider interface {
	// Load returns the stored payload of c, or nil when nothing was stored yet.
	Load(ctx context.Context, c Collection) ([]byte, error)
	// Save replaces the payloads of every collection in batch.
	// Either all of them commit or none do.
	Save(ctx context.Context, batch map[Collection][]byte) error
}
