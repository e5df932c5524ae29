package entity

import "github.com/shopspring/decimal"

// Product is the catalog's view of a product, as returned over its REST
// boundary. The order service never stores these.
type Product struct {
	ID       int64           `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	IsActive bool            `json:"isActive"`
}
