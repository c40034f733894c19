package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/01moynul/taptosell-cart/internal/auth"
	"github.com/01moynul/taptosell-cart/internal/cart"
	"github.com/01moynul/taptosell-cart/internal/middleware"
	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CartService is the cart lifecycle as the handlers use it.
type CartService interface {
	CreateCart(ctx context.Context, p models.Principal) (models.Cart, error)
	GetCart(ctx context.Context, p models.Principal, cartID string) (models.CartView, error)
	AddItems(ctx context.Context, p models.Principal, cartID string, in cart.ItemsInput) (models.CartView, error)
	IncrementItems(ctx context.Context, p models.Principal, cartID string, in cart.ItemsInput) (models.CartView, error)
	UpdateItemQuantity(ctx context.Context, p models.Principal, cartID, productID string, in cart.QuantityInput) (models.CartView, error)
	RemoveItem(ctx context.Context, p models.Principal, cartID, productID string) error
	Checkout(ctx context.Context, p models.Principal, cartID string, in cart.CheckoutInput) (models.Order, error)
	ListOrders(ctx context.Context, p models.Principal) ([]models.Order, error)
	GetOrder(ctx context.Context, p models.Principal, orderID string) (models.Order, error)
	AddAddress(ctx context.Context, p models.Principal, in cart.AddressInput) (models.Address, error)
	ListAddresses(ctx context.Context, p models.Principal) ([]models.Address, error)
}

// AuthService covers registration and login.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, creds auth.Credentials) (models.Principal, error)
	IssueToken(p models.Principal) (string, error)
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Cart CartService
	Auth AuthService
	Log  *logrus.Entry
}

// httpStatus maps a failure onto the status code the API reports.
func httpStatus(err error) int {
	switch cart.Kind(err) {
	case cart.ErrInvalidInput, cart.ErrInvalidAddress, cart.ErrEmptyCart:
		return http.StatusBadRequest
	case cart.ErrUnauthorized:
		return http.StatusUnauthorized
	case cart.ErrCartClosed:
		return http.StatusConflict
	case cart.ErrStorageFault:
		return http.StatusInternalServerError
	}

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidRole), errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes {message}. Server-side failures are logged with
// their detail and reported opaquely.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		h.Log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"route":  c.FullPath(),
		}).Error("request failed")
		c.JSON(status, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func invalidBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input data"})
}

// principal fetches the caller stored by AuthMiddleware, answering 401
// itself when there is none.
func principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
	}
	return p, ok
}
