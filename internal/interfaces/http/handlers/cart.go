// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/store-backend/internal/domain/cart"
	"github.com/your-org/store-backend/internal/domain/product"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	catalog     product.Catalog
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, catalog product.Catalog) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		catalog:     catalog,
	}
}

// AddToCartRequest represents the add item payload. A missing quantity adds one unit.
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

// UpdateCartItemRequest represents the set quantity payload. Zero removes the row.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	summary, err := h.cartService.GetSummary()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    summary,
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	count, err := h.cartService.GetTotalQuantity()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": count,
		},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	quantity := cart.MinQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	p, err := h.catalog.GetProduct(req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.cartService.AddItem(p, quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    item,
	})
}

// GetCartItem handles GET /cart/items/:id
func (h *CartHandler) GetCartItem(c *gin.Context) {
	id, ok := parseID(c, "cart item")
	if !ok {
		return
	}

	item, err := h.cartService.GetCartItem(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if item == nil {
		respondError(c, cart.ErrItemNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item retrieved successfully",
		"data":    item,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	id, ok := parseID(c, "cart item")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	existing, err := h.cartService.GetCartItem(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing == nil {
		respondError(c, cart.ErrItemNotFound)
		return
	}

	item, err := h.cartService.UpdateItem(id, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	if item == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Cart item removed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    item,
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	id, ok := parseID(c, "cart item")
	if !ok {
		return
	}

	removed, err := h.cartService.RemoveItem(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		respondError(c, cart.ErrItemNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}
