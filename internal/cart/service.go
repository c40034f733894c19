package cart

import (
	"context"
	"errors"
	"time"

	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/01moynul/taptosell-cart/internal/cart"

// Service owns the cart lifecycle: Open carts accept item mutations until
// Checkout turns them into an order and marks them CheckedOut.
type Service struct {
	store    Datastore
	validate *validator.Validate
	tracer   trace.Tracer

	now   func() time.Time
	newID func() uuid.UUID
}

// NewService wires the service to a Datastore with the wall clock and
// random UUIDs.
func NewService(store Datastore) *Service {
	return &Service{
		store:    store,
		validate: newValidator(),
		tracer:   otel.Tracer(tracerName),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.New,
	}
}

func (s *Service) start(ctx context.Context, op string, p models.Principal) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "cart."+op, trace.WithAttributes(
		attribute.String("user.id", p.UserID.String()),
		attribute.String("user.role", p.Role.String()),
	))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func authorize(p models.Principal, c models.Capability) error {
	if !p.Can(c) {
		return ErrUnauthorized
	}
	return nil
}

// ownedCart resolves a cart the principal owns. A missing cart and a
// foreign cart look the same to the caller.
func (s *Service) ownedCart(ctx context.Context, p models.Principal, cartID uuid.UUID) (models.Cart, error) {
	cart, err := s.store.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Cart{}, ErrUnauthorized
		}
		return models.Cart{}, storageFault("get cart", err)
	}
	if cart.UserID != p.UserID {
		return models.Cart{}, ErrUnauthorized
	}
	return cart, nil
}

// CreateCart opens a new cart for the principal. Users may hold several
// open carts at once.
func (s *Service) CreateCart(ctx context.Context, p models.Principal) (cart models.Cart, err error) {
	ctx, span := s.start(ctx, "CreateCart", p)
	defer func() { finish(span, err) }()

	if err := authorize(p, models.CapabilityManageCart); err != nil {
		return models.Cart{}, err
	}

	now := s.now()
	cart = models.Cart{
		ID:        s.newID(),
		UserID:    p.UserID,
		Status:    models.CartStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.store.Atomic(ctx, func(tx Store) error {
		return tx.InsertCart(ctx, cart)
	})
	if err != nil {
		return models.Cart{}, storageFault("insert cart", err)
	}
	span.SetAttributes(attribute.String("cart.id", cart.ID.String()))
	return cart, nil
}

// GetCart returns the cart header and its items. Checked-out carts are
// still readable; their status tells them apart.
func (s *Service) GetCart(ctx context.Context, p models.Principal, rawCartID string) (view models.CartView, err error) {
	ctx, span := s.start(ctx, "GetCart", p)
	defer func() { finish(span, err) }()

	if err := authorize(p, models.CapabilityManageCart); err != nil {
		return models.CartView{}, err
	}
	cartID, err := s.parseID("cart_id", rawCartID)
	if err != nil {
		return models.CartView{}, err
	}
	cart, err := s.ownedCart(ctx, p, cartID)
	if err != nil {
		return models.CartView{}, err
	}

	items, err := s.store.ListItems(ctx, cart.ID)
	if err != nil {
		return models.CartView{}, storageFault("list items", err)
	}
	return models.NewCartView(cart, items), nil
}

// mutate runs fn against an open cart the principal owns. The cart row is
// locked for the whole unit so a concurrent checkout either finishes first
// (and fn sees CheckedOut) or waits for fn to commit.
func (s *Service) mutate(ctx context.Context, p models.Principal, cartID uuid.UUID, fn func(tx Store) error) (models.CartView, error) {
	cart, err := s.ownedCart(ctx, p, cartID)
	if err != nil {
		return models.CartView{}, err
	}
	if !cart.IsOpen() {
		return models.CartView{}, ErrCartClosed
	}

	var view models.CartView
	err = s.store.Atomic(ctx, func(tx Store) error {
		locked, err := tx.LockCart(ctx, cart.ID)
		if err != nil {
			return err
		}
		if !locked.IsOpen() {
			return ErrCartClosed
		}
		if err := fn(tx); err != nil {
			return err
		}
		items, err := tx.ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		view = models.NewCartView(locked, items)
		return nil
	})
	if err != nil {
		return models.CartView{}, classify("mutate cart", err)
	}
	return view, nil
}

// AddItems upserts every pair with replace semantics: a product already in
// the cart ends up with exactly the submitted quantity.
func (s *Service) AddItems(ctx context.Context, p models.Principal, rawCartID string, in ItemsInput) (models.CartView, error) {
	return s.upsertItems(ctx, "AddItems", p, rawCartID, in, UpsertReplace)
}

// IncrementItems adds the submitted quantities to whatever is stored.
func (s *Service) IncrementItems(ctx context.Context, p models.Principal, rawCartID string, in ItemsInput) (models.CartView, error) {
	return s.upsertItems(ctx, "IncrementItems", p, rawCartID, in, UpsertIncrement)
}

func (s *Service) upsertItems(ctx context.Context, op string, p models.Principal, rawCartID string, in ItemsInput, mode UpsertMode) (view models.CartView, err error) {
	ctx, span := s.start(ctx, op, p)
	defer func() { finish(span, err) }()

	if err := authorize(p, models.CapabilityManageCart); err != nil {
		return models.CartView{}, err
	}
	cartID, err := s.parseID("cart_id", rawCartID)
	if err != nil {
		return models.CartView{}, err
	}
	items, err := s.parseItems(cartID, in)
	if err != nil {
		return models.CartView{}, err
	}

	return s.mutate(ctx, p, cartID, func(tx Store) error {
		if mode == UpsertIncrement {
			stored, err := tx.ListItems(ctx, cartID)
			if err != nil {
				return err
			}
			if err := checkIncrement(stored, items); err != nil {
				return err
			}
		}
		for _, it := range items {
			if err := tx.UpsertItem(ctx, it, mode); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateItemQuantity sets the quantity of a product already in the cart.
// It never inserts.
func (s *Service) UpdateItemQuantity(ctx context.Context, p models.Principal, rawCartID, rawProductID string, in QuantityInput) (view models.CartView, err error) {
	ctx, span := s.start(ctx, "UpdateItemQuantity", p)
	defer func() { finish(span, err) }()

	if err := authorize(p, models.CapabilityManageCart); err != nil {
		return models.CartView{}, err
	}
	cartID, err := s.parseID("cart_id", rawCartID)
	if err != nil {
		return models.CartView{}, err
	}
	productID, err := s.parseID("product_id", rawProductID)
	if err != nil {
		return models.CartView{}, err
	}
	if err := s.parseQuantity(in); err != nil {
		return models.CartView{}, err
	}

	return s.mutate(ctx, p, cartID, func(tx Store) error {
		found, err := tx.SetItemQuantity(ctx, models.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  in.Quantity,
		})
		if err != nil {
			return err
		}
		if !found {
			return invalidInput("product %s is not in the cart", productID)
		}
		return nil
	})
}

// RemoveItem deletes a product from the cart. Removing a product that is
// not there succeeds.
func (s *Service) RemoveItem(ctx context.Context, p models.Principal, rawCartID, rawProductID string) (err error) {
	ctx, span := s.start(ctx, "RemoveItem", p)
	defer func() { finish(span, err) }()

	if err := authorize(p, models.CapabilityManageCart); err != nil {
		return err
	}
	cartID, err := s.parseID("cart_id", rawCartID)
	if err != nil {
		return err
	}
	productID, err := s.parseID("product_id", rawProductID)
	if err != nil {
		return err
	}

	_, err = s.mutate(ctx, p, cartID, func(tx Store) error {
		return tx.DeleteItem(ctx, cartID, productID)
	})
	return err
}

// Checkout turns an open cart into an order. Preconditions are checked in
// a fixed order and the first failure is returned. The transition itself
// is gated on the conditional status update, so of two racing checkouts
// only one reaches the order insert.
func (s *Service) Checkout(ctx context.Context, p models.Principal, rawCartID string, in CheckoutInput) (order models.Order, err error) {
	ctx, span := s.start(ctx, "Checkout", p)
	defer func() { finish(span, err) }()

	if err := authorize(p, models.CapabilityManageCart); err != nil {
		return models.Order{}, err
	}
	cartID, err := s.parseID("cart_id", rawCartID)
	if err != nil {
		return models.Order{}, err
	}

	cart, err := s.ownedCart(ctx, p, cartID)
	if err != nil {
		return models.Order{}, err
	}
	if !cart.IsOpen() {
		return models.Order{}, ErrCartClosed
	}

	addressID, err := uuid.Parse(in.AddressID)
	if err != nil || s.validate.Var(in.AddressID, "required,uuid") != nil {
		return models.Order{}, ErrInvalidAddress
	}
	owned, err := s.store.AddressOwnedBy(ctx, addressID, p.UserID)
	if err != nil {
		return models.Order{}, storageFault("check address", err)
	}
	if !owned {
		return models.Order{}, ErrInvalidAddress
	}

	items, err := s.store.ListItems(ctx, cart.ID)
	if err != nil {
		return models.Order{}, storageFault("list items", err)
	}
	if len(items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	now := s.now()
	err = s.store.Atomic(ctx, func(tx Store) error {
		flipped, err := tx.MarkCheckedOut(ctx, cart.ID, now)
		if err != nil {
			return err
		}
		if !flipped {
			return ErrCartClosed
		}

		// Re-read under the status gate: mutations that committed after the
		// precondition read belong in the snapshot.
		items, err := tx.ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		orderID := s.newID()
		order = models.Order{
			ID:        orderID,
			CartID:    cart.ID,
			UserID:    p.UserID,
			AddressID: addressID,
			Items:     models.SnapshotItems(orderID, items),
			CreatedAt: now,
		}
		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		return models.Order{}, classify("checkout", err)
	}

	span.SetAttributes(
		attribute.String("cart.id", cart.ID.String()),
		attribute.String("order.id", order.ID.String()),
	)
	return order, nil
}

// ListOrders returns the principal's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, p models.Principal) (orders []models.Order, err error) {
	ctx, span := s.start(ctx, "ListOrders", p)
	defer func() { finish(span, err) }()

	if err := authorize(p, models.CapabilityViewOrders); err != nil {
		return nil, err
	}
	orders, err = s.store.ListOrders(ctx, p.UserID)
	if err != nil {
		return nil, storageFault("list orders", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrder returns one of the principal's orders with its item snapshot.
func (s *Service) GetOrder(ctx context.Context, p models.Principal, rawOrderID string) (order models.Order, err error) {
	ctx, span := s.start(ctx, "GetOrder", p)
	defer func() { finish(span, err) }()

	if err := authorize(p, models.CapabilityViewOrders); err != nil {
		return models.Order{}, err
	}
	orderID, err := s.parseID("order_id", rawOrderID)
	if err != nil {
		return models.Order{}, err
	}

	order, err = s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Order{}, ErrUnauthorized
		}
		return models.Order{}, storageFault("get order", err)
	}
	if order.UserID != p.UserID {
		return models.Order{}, ErrUnauthorized
	}
	return order, nil
}
