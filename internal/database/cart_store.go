package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/01moynul/taptosell-cart/internal/cart"
	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CartStore is the MySQL implementation of cart.Datastore. The value
// handed to Atomic callbacks is the same type bound to a transaction.
type CartStore struct {
	db *sql.DB
	q  querier
}

func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{db: db, q: db}
}

// Atomic runs fn inside one transaction. Any error from fn rolls back.
func (s *CartStore) Atomic(ctx context.Context, fn func(cart.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	if err := fn(&CartStore{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rollback failed: %v", rbErr)
		}
		return err
	}

	return errors.Wrap(tx.Commit(), "commit transaction")
}

const selectCart = `
	SELECT cart_id, user_id, status, created_at, updated_at
	FROM carts
	WHERE cart_id = ?`

func (s *CartStore) scanCart(ctx context.Context, query string, cartID uuid.UUID) (models.Cart, error) {
	var c models.Cart
	err := s.q.QueryRowContext(ctx, query, cartID).Scan(&c.ID, &c.UserID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Cart{}, cart.ErrNotFound
		}
		return models.Cart{}, errors.Wrapf(err, "select cart %s", cartID)
	}
	return c, nil
}

func (s *CartStore) GetCart(ctx context.Context, cartID uuid.UUID) (models.Cart, error) {
	return s.scanCart(ctx, selectCart, cartID)
}

// LockCart takes a row lock that lasts until the surrounding transaction ends.
func (s *CartStore) LockCart(ctx context.Context, cartID uuid.UUID) (models.Cart, error) {
	return s.scanCart(ctx, selectCart+" FOR UPDATE", cartID)
}

func (s *CartStore) InsertCart(ctx context.Context, c models.Cart) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO carts (cart_id, user_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, string(c.Status), c.CreatedAt, c.UpdatedAt)
	return errors.Wrap(err, "insert cart")
}

// ListItems returns items in the order they first entered the cart. Later
// upserts of the same product keep its position.
func (s *CartStore) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT product_id, quantity
		FROM cart_items
		WHERE cart_id = ?
		ORDER BY seq`, cartID)
	if err != nil {
		return nil, errors.Wrap(err, "query cart items")
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		item := models.CartItem{CartID: cartID}
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, errors.Wrap(err, "scan cart item")
		}
		items = append(items, item)
	}
	return items, errors.Wrap(rows.Err(), "iterate cart items")
}

// UpsertItem relies on the (cart_id, product_id) primary key.
func (s *CartStore) UpsertItem(ctx context.Context, item models.CartItem, mode cart.UpsertMode) error {
	update := "quantity = VALUES(quantity)"
	if mode == cart.UpsertIncrement {
		update = "quantity = quantity + VALUES(quantity)"
	}

	query := fmt.Sprintf(`
		INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP(6), CURRENT_TIMESTAMP(6))
		ON DUPLICATE KEY UPDATE
			%s,
			updated_at = CURRENT_TIMESTAMP(6)`, update)

	_, err := s.q.ExecContext(ctx, query, item.CartID, item.ProductID, item.Quantity)
	if isOutOfRange(err) {
		return errors.Wrapf(cart.ErrInvalidInput, "quantity for product %s out of range", item.ProductID)
	}
	return errors.Wrapf(err, "upsert cart item %s", item.ProductID)
}

// SetItemQuantity checks presence with a locking read first: MySQL reports
// zero affected rows for an UPDATE that writes the value already stored.
func (s *CartStore) SetItemQuantity(ctx context.Context, item models.CartItem) (bool, error) {
	var current int
	err := s.q.QueryRowContext(ctx, `
		SELECT quantity FROM cart_items
		WHERE cart_id = ? AND product_id = ?
		FOR UPDATE`, item.CartID, item.ProductID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrap(err, "select cart item")
	}

	_, err = s.q.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = ?, updated_at = CURRENT_TIMESTAMP(6)
		WHERE cart_id = ? AND product_id = ?`,
		item.Quantity, item.CartID, item.ProductID)
	if err != nil {
		return false, errors.Wrap(err, "update cart item")
	}
	return true, nil
}

func (s *CartStore) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	_, err := s.q.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?", cartID, productID)
	return errors.Wrap(err, "delete cart item")
}

// MarkCheckedOut is the compare-and-swap that gates checkout.
func (s *CartStore) MarkCheckedOut(ctx context.Context, cartID uuid.UUID, at time.Time) (bool, error) {
	result, err := s.q.ExecContext(ctx, `
		UPDATE carts
		SET status = ?, updated_at = ?
		WHERE cart_id = ? AND status = ?`,
		string(models.CartStatusCheckedOut), at, cartID, string(models.CartStatusOpen))
	if err != nil {
		return false, errors.Wrap(err, "mark cart checked out")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return affected == 1, nil
}

// InsertOrder writes the order header and its item snapshot. A second
// order for the same cart trips uq_orders_cart.
func (s *CartStore) InsertOrder(ctx context.Context, o models.Order) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO orders (order_id, cart_id, user_id, address_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.CartID, o.UserID, o.AddressID, o.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return cart.ErrCartClosed
		}
		return errors.Wrap(err, "insert order")
	}

	for _, item := range o.Items {
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES (?, ?, ?)`,
			o.ID, item.ProductID, item.Quantity)
		if err != nil {
			return errors.Wrapf(err, "insert order item %s", item.ProductID)
		}
	}
	return nil
}

func (s *CartStore) AddressOwnedBy(ctx context.Context, addressID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM addresses WHERE address_id = ? AND user_id = ?)`,
		addressID, userID).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "check address")
	}
	return exists, nil
}

func (s *CartStore) GetOrder(ctx context.Context, orderID uuid.UUID) (models.Order, error) {
	var o models.Order
	err := s.q.QueryRowContext(ctx, `
		SELECT order_id, cart_id, user_id, address_id, created_at
		FROM orders
		WHERE order_id = ?`, orderID).Scan(&o.ID, &o.CartID, &o.UserID, &o.AddressID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Order{}, cart.ErrNotFound
		}
		return models.Order{}, errors.Wrap(err, "select order")
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT order_id, product_id, quantity
		FROM order_items
		WHERE order_id = ?
		ORDER BY product_id`, orderID)
	if err != nil {
		return models.Order{}, errors.Wrap(err, "query order items")
	}
	defer rows.Close()

	items, err := scanOrderItems(rows)
	if err != nil {
		return models.Order{}, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	return o, nil
}

func (s *CartStore) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT order_id, cart_id, user_id, address_id, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.CartID, &o.UserID, &o.AddressID, &o.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := s.q.QueryContext(ctx, `
		SELECT oi.order_id, oi.product_id, oi.quantity
		FROM order_items oi
		JOIN orders o ON o.order_id = oi.order_id
		WHERE o.user_id = ?
		ORDER BY oi.product_id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query order items")
	}
	defer itemRows.Close()

	items, err := scanOrderItems(itemRows)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return orders, nil
}

func scanOrderItems(rows *sql.Rows) (map[uuid.UUID][]models.OrderItem, error) {
	byOrder := make(map[uuid.UUID][]models.OrderItem)
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	return byOrder, errors.Wrap(rows.Err(), "iterate order items")
}
