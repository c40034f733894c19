package routes

import (
	"net/http"
	"time"

	"github.com/01moynul/taptosell-cart/internal/handlers"
	"github.com/01moynul/taptosell-cart/internal/logging"
	"github.com/01moynul/taptosell-cart/internal/middleware"
	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Options struct {
	ServiceName    string
	AllowedOrigins []string
	Log            *logrus.Entry
}

// corsConfig allows the configured front-ends to send bearer tokens.
func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func SetupRouter(h *handlers.Handlers, tokens middleware.TokenParser, opts Options) *gin.Engine {
	router := gin.New()

	// --- Global Middleware ---
	// CORS first so preflight requests never reach auth.
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(opts.ServiceName))
	router.Use(logging.RequestLogger(opts.Log))

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)

		// --- Cart Routes (Customer-Only) ---
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthMiddleware(tokens))
		cart.Use(middleware.RequireCapability(models.CapabilityManageCart))
		{
			cart.POST("", h.CreateCart)
			cart.GET("/:cartId", h.GetCart)
			cart.POST("/:cartId", h.AddItems)
			cart.PATCH("/:cartId", h.IncrementItems)
			cart.PUT("/:cartId/:productId", h.UpdateCartItem)
			cart.DELETE("/:cartId/:productId", h.DeleteCartItem)
			cart.POST("/:cartId/checkout", h.Checkout)
		}

		// --- Address Book (Customer-Only) ---
		addresses := v1.Group("/addresses")
		addresses.Use(middleware.AuthMiddleware(tokens))
		addresses.Use(middleware.RequireCapability(models.CapabilityManageCart))
		{
			addresses.POST("", h.CreateAddress)
			addresses.GET("", h.GetMyAddresses)
		}

		// --- Order Routes ---
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthMiddleware(tokens))
		orders.Use(middleware.RequireCapability(models.CapabilityViewOrders))
		{
			orders.GET("", h.GetMyOrders)
			orders.GET("/:orderId", h.GetOrderDetails)
		}
	}

	return router
}
