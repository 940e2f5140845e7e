package model

import (
	"time"

	"pagarme-checkout/internal/domain"
)

// ItemConfig is one purchasable unit of the catalog. The slug is the
// external identifier communicated to the gateway as the item id.
type ItemConfig struct {
	ID             string
	Slug           string
	Name           string
	Price          int64 // minor currency units (cents)
	Tangible       bool
	AvailableFrom  *time.Time
	AvailableUntil *time.Time
	UpsellSlug     *string
	Config         *FormConfig
}

// NewItemConfig validates and constructs a catalog item.
func NewItemConfig(id, slug, name string, price int64, tangible bool, cfg *FormConfig) (*ItemConfig, error) {
	if id == "" || slug == "" || name == "" || price <= 0 || cfg == nil {
		return nil, domain.ErrInvalidArgument
	}
	return &ItemConfig{
		ID:       id,
		Slug:     slug,
		Name:     name,
		Price:    price,
		Tangible: tangible,
		Config:   cfg,
	}, nil
}

// AvailableAt reports whether the item can be sold at the given instant.
// An unset bound is open-ended.
func (i *ItemConfig) AvailableAt(t time.Time) bool {
	if i.AvailableFrom != nil && t.Before(*i.AvailableFrom) {
		return false
	}
	if i.AvailableUntil != nil && t.After(*i.AvailableUntil) {
		return false
	}
	return true
}
