package model

import "time"

// Product is a honey product listed by a beekeeper. Prices are stored in
// cents to keep revenue aggregation exact. StockQuantity is decremented by a
// conditional update when an order is placed and can never go below zero.
//
// Fields:
//
//	ID            – primary key identifier.
//	BeekeeperID   – user who listed the product.
//	Name          – product name.
//	Description   – free-form description.
//	PriceCents    – unit price in cents.
//	StockQuantity – units available for ordering.
//	ImagePath     – stored filename of the optional product image.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last update timestamp.
type Product struct {
	ID            uint64    // products.id
	BeekeeperID   uint64    // products.beekeeper_id
	Name          string    // products.name
	Description   string    // products.description
	PriceCents    int64     // products.price_cents
	StockQuantity int64     // products.stock_quantity
	ImagePath     string    // products.image_path
	CreatedAt     time.Time // products.created_at
	UpdatedAt     time.Time // products.updated_at
}
