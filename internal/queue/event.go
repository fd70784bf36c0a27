// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPlacedEvent is published after a checkout commits. It carries enough
// information for downstream consumers to log, notify, or feed analytics
// without querying the primary database.
type OrderPlacedEvent struct {
	OrderID        uint64 `json:"order_id"`
	CustomerID     uint64 `json:"customer_id"`
	BeekeeperID    uint64 `json:"beekeeper_id"`
	ProductID      uint64 `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
	PlacedAt       string `json:"placed_at"`
}
