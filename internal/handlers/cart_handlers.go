package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/01moynul/taptosell-cart/internal/cart"
	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers (Customer-Only) ---
//

// CreateCart is the handler for POST /v1/cart
func (h *Handlers) CreateCart(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	created, err := h.Cart.CreateCart(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetCart is the handler for GET /v1/cart/:cartId
func (h *Handlers) GetCart(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	view, err := h.Cart.GetCart(c.Request.Context(), p, c.Param("cartId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddItems is the handler for POST /v1/cart/:cartId
// Quantities replace whatever the cart held for the product.
func (h *Handlers) AddItems(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var input cart.ItemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		invalidBody(c)
		return
	}

	view, err := h.Cart.AddItems(c.Request.Context(), p, c.Param("cartId"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// IncrementItems is the handler for PATCH /v1/cart/:cartId
// Quantities are added to whatever the cart held for the product.
func (h *Handlers) IncrementItems(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var input cart.ItemsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		invalidBody(c)
		return
	}

	view, err := h.Cart.IncrementItems(c.Request.Context(), p, c.Param("cartId"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateCartItem is the handler for PUT /v1/cart/:cartId/:productId
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var input cart.QuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		invalidBody(c)
		return
	}

	view, err := h.Cart.UpdateItemQuantity(c.Request.Context(), p, c.Param("cartId"), c.Param("productId"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteCartItem is the handler for DELETE /v1/cart/:cartId/:productId
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := h.Cart.RemoveItem(c.Request.Context(), p, c.Param("cartId"), c.Param("productId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item deleted from cart"})
}

// Checkout is the handler for POST /v1/cart/:cartId/checkout
func (h *Handlers) Checkout(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	// An empty body is a missing address, which the service reports.
	var input cart.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		invalidBody(c)
		return
	}

	order, err := h.Cart.Checkout(c.Request.Context(), p, c.Param("cartId"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
