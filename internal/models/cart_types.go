package models

import (
	"time"

	"github.com/google/uuid"
)

// CartStatus is the lifecycle state stored in 'carts.status'.
type CartStatus string

const (
	CartStatusOpen       CartStatus = "open"
	CartStatusCheckedOut CartStatus = "checked_out"
)

// Cart defines the struct for the 'carts' table
type Cart struct {
	ID        uuid.UUID  `json:"cart_id" db:"cart_id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Status    CartStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether items may still be mutated.
func (c Cart) IsOpen() bool {
	return c.Status == CartStatusOpen
}

// CartItem defines the struct for the 'cart_items' table.
// (cart_id, product_id) is the primary key.
type CartItem struct {
	CartID    uuid.UUID `json:"-" db:"cart_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// CartView is what the cart endpoints return: the header plus its items.
type CartView struct {
	CartID    uuid.UUID  `json:"cart_id"`
	Status    CartStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []CartItem `json:"items"`
}

// NewCartView pairs a cart header with its items. A nil item slice is
// normalised so the JSON always carries an array.
func NewCartView(cart Cart, items []CartItem) CartView {
	if items == nil {
		items = []CartItem{}
	}
	return CartView{
		CartID:    cart.ID,
		Status:    cart.Status,
		CreatedAt: cart.CreatedAt,
		Items:     items,
	}
}
