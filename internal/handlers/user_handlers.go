package handlers

import (
	"net/http"

	"github.com/01moynul/taptosell-cart/internal/auth"
	"github.com/gin-gonic/gin"
)

// Register is the handler for POST /v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Decode JSON ---
	// Field rules are checked by the authenticator.
	var input auth.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required data"})
		return
	}

	// 2. --- Create the account (role check + bcrypt hash) ---
	user, err := h.Auth.Register(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 3. --- Send Success Response ---
	// The password hash carries json:"-" and never leaves the server.
	c.JSON(http.StatusCreated, user)
}

// Login is the handler for POST /v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var creds auth.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required data"})
		return
	}

	p, err := h.Auth.Authenticate(c.Request.Context(), creds)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.Auth.IssueToken(p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}
