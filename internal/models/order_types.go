package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is the model for the 'orders' table. One order per cart.
type Order struct {
	ID        uuid.UUID   `json:"order_id" db:"order_id"`
	CartID    uuid.UUID   `json:"cart_id" db:"cart_id"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	AddressID uuid.UUID   `json:"address_id" db:"address_id"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// OrderItem is the model for the 'order_items' table: a snapshot of a
// cart item taken at checkout.
type OrderItem struct {
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// SnapshotItems copies cart items into order items for the given order.
func SnapshotItems(orderID uuid.UUID, items []CartItem) []OrderItem {
	snapshot := make([]OrderItem, 0, len(items))
	for _, it := range items {
		snapshot = append(snapshot, OrderItem{
			OrderID:   orderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return snapshot
}
