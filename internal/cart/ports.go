package cart

import (
	"context"
	"time"

	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/google/uuid"
)

// UpsertMode selects what happens when (cart_id, product_id) already exists.
type UpsertMode int

const (
	// UpsertReplace overwrites the stored quantity.
	UpsertReplace UpsertMode = iota
	// UpsertIncrement adds to the stored quantity.
	UpsertIncrement
)

// Reader is the read side shared by the Datastore and its atomic units.
type Reader interface {
	GetCart(ctx context.Context, cartID uuid.UUID) (models.Cart, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	AddressOwnedBy(ctx context.Context, addressID, userID uuid.UUID) (bool, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
}

// Store is the view of the Datastore inside one atomic unit.
type Store interface {
	Reader

	InsertCart(ctx context.Context, cart models.Cart) error
	// LockCart reads the cart and holds it against concurrent writers
	// until the unit ends.
	LockCart(ctx context.Context, cartID uuid.UUID) (models.Cart, error)
	UpsertItem(ctx context.Context, item models.CartItem, mode UpsertMode) error
	// SetItemQuantity reports false when the item is not in the cart.
	SetItemQuantity(ctx context.Context, item models.CartItem) (bool, error)
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	// MarkCheckedOut flips an open cart to checked out and reports false
	// when the cart was not open.
	MarkCheckedOut(ctx context.Context, cartID uuid.UUID, at time.Time) (bool, error)
	InsertOrder(ctx context.Context, order models.Order) error
	InsertAddress(ctx context.Context, address models.Address) error
}

// Datastore is the relational store the service runs against. Atomic
// commits everything fn did when it returns nil and nothing otherwise.
type Datastore interface {
	Reader
	Atomic(ctx context.Context, fn func(Store) error) error
}
