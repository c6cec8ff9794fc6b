package domain

import (
	"fmt"
	"time"
)

type Product struct {
	ID           int64
	Sku          string
	Name         string
	Description  string
	Category     string
	Price        float64
	ImageURL     string
	CreatedAtUtc time.Time
}

// ProductSummary is the subset of a catalog row the storefront client keys on.
type ProductSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewProduct(sku, name string, price float64) *Product {
	return &Product{
		Sku:          sku,
		Name:         name,
		Price:        price,
		CreatedAtUtc: time.Now().UTC(),
	}
}

// EffectiveSku falls back to a synthetic sku for rows seeded without one.
func (p *Product) EffectiveSku() string {
	if p.Sku != "" {
		return p.Sku
	}
	return fmt.Sprintf("SKU-%d", p.ID)
}
