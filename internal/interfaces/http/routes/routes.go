// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/store-backend/internal/interfaces/http/handlers"
)

// Handlers groups the endpoint handlers mounted under /api/v1
type Handlers struct {
	Product   *handlers.ProductHandler
	Cart      *handlers.CartHandler
	Checkout  *handlers.CheckoutHandler
	Order     *handlers.OrderHandler
	Analytics *handlers.AnalyticsHandler
}

// SetupRoutes mounts every API route group
func SetupRoutes(rg *gin.RouterGroup, h Handlers) {
	SetupProductRoutes(rg, h.Product)
	SetupCartRoutes(rg, h.Cart)
	SetupCheckoutRoutes(rg, h.Checkout)
	SetupOrderRoutes(rg, h.Order)
	if h.Analytics != nil {
		SetupAnalyticsRoutes(rg, h.Analytics)
	}
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, cartHandler *handlers.CartHandler) {
	cart := rg.Group("/cart")
	{
		cart.GET("", cartHandler.GetCart)
		cart.GET("/count", cartHandler.GetCartCount)
		cart.DELETE("", cartHandler.ClearCart)

		cart.POST("/items", cartHandler.AddToCart)
		cart.GET("/items/:id", cartHandler.GetCartItem)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveFromCart)
	}
}

// SetupCheckoutRoutes sets up checkout related routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, checkoutHandler *handlers.CheckoutHandler) {
	checkout := rg.Group("/checkout")
	{
		checkout.POST("", checkoutHandler.PlaceOrder)
		checkout.GET("/summary", checkoutHandler.GetCheckoutSummary)
		checkout.POST("/validate", checkoutHandler.ValidateCheckout)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orders := rg.Group("/orders")
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/receipt", orderHandler.GetReceipt)
		orders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
	}
}

// SetupAnalyticsRoutes sets up analytics routes
func SetupAnalyticsRoutes(rg *gin.RouterGroup, analyticsHandler *handlers.AnalyticsHandler) {
	analytics := rg.Group("/analytics")
	{
		analytics.GET("/dashboard", analyticsHandler.GetDashboard)
	}
}
