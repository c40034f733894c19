package cart

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/google/uuid"
)

var errInjected = errors.New("injected storage failure")

// memState is the table contents of the in-memory Datastore.
type memState struct {
	carts     map[uuid.UUID]models.Cart
	items     map[uuid.UUID][]models.CartItem
	addresses map[uuid.UUID]models.Address
	orders    map[uuid.UUID]models.Order
}

func newMemState() *memState {
	return &memState{
		carts:     map[uuid.UUID]models.Cart{},
		items:     map[uuid.UUID][]models.CartItem{},
		addresses: map[uuid.UUID]models.Address{},
		orders:    map[uuid.UUID]models.Order{},
	}
}

func (st *memState) clone() *memState {
	out := newMemState()
	for k, v := range st.carts {
		out.carts[k] = v
	}
	for k, v := range st.items {
		out.items[k] = append([]models.CartItem(nil), v...)
	}
	for k, v := range st.addresses {
		out.addresses[k] = v
	}
	for k, v := range st.orders {
		v.Items = append([]models.OrderItem(nil), v.Items...)
		out.orders[k] = v
	}
	return out
}

// memDatastore serializes atomic units behind one mutex and restores the
// previous state when a unit fails.
type memDatastore struct {
	mu          sync.Mutex
	st          *memState
	failOn      string
	atomicCalls int
}

func newMemDatastore() *memDatastore {
	return &memDatastore{st: newMemState()}
}

func (d *memDatastore) Atomic(ctx context.Context, fn func(Store) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.atomicCalls++
	before := d.st.clone()
	if err := fn(&memTx{st: d.st, failOn: d.failOn}); err != nil {
		d.st = before
		return err
	}
	return nil
}

func (d *memDatastore) GetCart(ctx context.Context, cartID uuid.UUID) (models.Cart, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return (&memTx{st: d.st}).GetCart(ctx, cartID)
}

func (d *memDatastore) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return (&memTx{st: d.st}).ListItems(ctx, cartID)
}

func (d *memDatastore) AddressOwnedBy(ctx context.Context, addressID, userID uuid.UUID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return (&memTx{st: d.st}).AddressOwnedBy(ctx, addressID, userID)
}

func (d *memDatastore) GetOrder(ctx context.Context, orderID uuid.UUID) (models.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return (&memTx{st: d.st}).GetOrder(ctx, orderID)
}

func (d *memDatastore) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return (&memTx{st: d.st}).ListOrders(ctx, userID)
}

func (d *memDatastore) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return (&memTx{st: d.st}).ListAddresses(ctx, userID)
}

func (d *memDatastore) addAddress(userID uuid.UUID) uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := uuid.New()
	d.st.addresses[id] = models.Address{ID: id, UserID: userID}
	return id
}

func (d *memDatastore) orderCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.st.orders)
}

func (d *memDatastore) setFailOn(op string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failOn = op
}

// memTx operates on the state directly; the caller holds the lock.
type memTx struct {
	st     *memState
	failOn string
}

func (t *memTx) fail(op string) error {
	if t.failOn == op {
		return errInjected
	}
	return nil
}

func (t *memTx) GetCart(ctx context.Context, cartID uuid.UUID) (models.Cart, error) {
	c, ok := t.st.carts[cartID]
	if !ok {
		return models.Cart{}, ErrNotFound
	}
	return c, nil
}

func (t *memTx) LockCart(ctx context.Context, cartID uuid.UUID) (models.Cart, error) {
	return t.GetCart(ctx, cartID)
}

func (t *memTx) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	return append([]models.CartItem{}, t.st.items[cartID]...), nil
}

func (t *memTx) AddressOwnedBy(ctx context.Context, addressID, userID uuid.UUID) (bool, error) {
	a, ok := t.st.addresses[addressID]
	return ok && a.UserID == userID, nil
}

func (t *memTx) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var out []models.Address
	for _, a := range t.st.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) InsertAddress(ctx context.Context, a models.Address) error {
	if err := t.fail("InsertAddress"); err != nil {
		return err
	}
	t.st.addresses[a.ID] = a
	return nil
}

func (t *memTx) GetOrder(ctx context.Context, orderID uuid.UUID) (models.Order, error) {
	o, ok := t.st.orders[orderID]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return o, nil
}

func (t *memTx) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range t.st.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) InsertCart(ctx context.Context, c models.Cart) error {
	if err := t.fail("InsertCart"); err != nil {
		return err
	}
	t.st.carts[c.ID] = c
	return nil
}

func (t *memTx) UpsertItem(ctx context.Context, item models.CartItem, mode UpsertMode) error {
	if err := t.fail("UpsertItem"); err != nil {
		return err
	}
	items := t.st.items[item.CartID]
	for i := range items {
		if items[i].ProductID == item.ProductID {
			if mode == UpsertIncrement {
				items[i].Quantity += item.Quantity
			} else {
				items[i].Quantity = item.Quantity
			}
			return nil
		}
	}
	t.st.items[item.CartID] = append(items, item)
	return nil
}

func (t *memTx) SetItemQuantity(ctx context.Context, item models.CartItem) (bool, error) {
	items := t.st.items[item.CartID]
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity = item.Quantity
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	items := t.st.items[cartID]
	for i := range items {
		if items[i].ProductID == productID {
			t.st.items[cartID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (t *memTx) MarkCheckedOut(ctx context.Context, cartID uuid.UUID, at time.Time) (bool, error) {
	if err := t.fail("MarkCheckedOut"); err != nil {
		return false, err
	}
	c, ok := t.st.carts[cartID]
	if !ok || c.Status != models.CartStatusOpen {
		return false, nil
	}
	c.Status = models.CartStatusCheckedOut
	c.UpdatedAt = at
	t.st.carts[cartID] = c
	return true, nil
}

func (t *memTx) InsertOrder(ctx context.Context, o models.Order) error {
	if err := t.fail("InsertOrder"); err != nil {
		return err
	}
	for _, existing := range t.st.orders {
		if existing.CartID == o.CartID {
			return ErrCartClosed
		}
	}
	t.st.orders[o.ID] = o
	return nil
}
