package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- Order Retrieval Handlers ---
//

// GetMyOrders is the handler for GET /v1/orders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	orders, err := h.Cart.ListOrders(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrderDetails is the handler for GET /v1/orders/:orderId
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	order, err := h.Cart.GetOrder(c.Request.Context(), p, c.Param("orderId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
