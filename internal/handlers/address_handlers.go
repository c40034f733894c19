package handlers

import (
	"net/http"

	"github.com/01moynul/taptosell-cart/internal/cart"
	"github.com/gin-gonic/gin"
)

// CreateAddress is the handler for POST /v1/addresses
func (h *Handlers) CreateAddress(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var input cart.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		invalidBody(c)
		return
	}

	address, err := h.Cart.AddAddress(c.Request.Context(), p, input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

// GetMyAddresses is the handler for GET /v1/addresses
func (h *Handlers) GetMyAddresses(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	addresses, err := h.Cart.ListAddresses(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}
