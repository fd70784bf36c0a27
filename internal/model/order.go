package model

import "time"

// Order statuses. Orders start PROCESSING. The fulfilling beekeeper (or an
// admin) ships, delivers and finally completes the order; cancellation is
// possible until the order has been delivered. COMPLETED and CANCELLED are
// terminal.
const (
	OrderProcessing = "PROCESSING"
	OrderShipped    = "SHIPPED"
	OrderDelivered  = "DELIVERED"
	OrderCompleted  = "COMPLETED"
	OrderCancelled  = "CANCELLED"
)

// orderEdges is the allowed transition graph for orders.
var orderEdges = map[string][]string{
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
	OrderDelivered:  {OrderCompleted},
	OrderCompleted:  {},
	OrderCancelled:  {},
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	_, ok := orderEdges[s]
	return ok
}

// CanTransitionOrder reports whether an order may move from one status to
// another. Unknown statuses never transition.
func CanTransitionOrder(from, to string) bool {
	for _, next := range orderEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a purchase of a product. BeekeeperID and UnitPriceCents are
// snapshots taken from the product at creation time so later edits to the
// listing do not rewrite order history.
type Order struct {
	ID             uint64    // orders.id
	CustomerID     uint64    // orders.customer_id
	BeekeeperID    uint64    // orders.beekeeper_id (copied from product owner)
	ProductID      uint64    // orders.product_id
	Quantity       int64     // orders.quantity
	UnitPriceCents int64     // orders.unit_price_cents (product price snapshot)
	Status         string    // orders.status
	CreatedAt      time.Time // orders.created_at
	UpdatedAt      time.Time // orders.updated_at
}
