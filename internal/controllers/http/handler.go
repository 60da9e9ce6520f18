package http

import (
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

const orderPlacedMessage = "Order placed. Your items will be delivered once the payment is verified."

type Handler struct {
	orders  *services.OrderService
	reviews *services.ReviewService
	catalog *services.CatalogService
	carts   cart.Store

	auth          *AdminAuth
	checkoutLimit *RateLimiter
	loginLimit    *RateLimiter
}

func NewHandler(o *services.OrderService, r *services.ReviewService, c *services.CatalogService, carts cart.Store) *Handler {
	return &Handler{orders: o, reviews: r, catalog: c, carts: carts}
}

func (h *Handler) SetAdminAuth(a *AdminAuth) { h.auth = a }

// SetRateLimits installs the per-IP limiters for checkout and admin login.
// Either may be nil.
func (h *Handler) SetRateLimits(checkout, login *RateLimiter) {
	h.checkoutLimit = checkout
	h.loginLimit = login
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.POST("/orders", h.checkoutLimit.Middleware(), h.CreateOrder)

	c := api.Group("/cart", h.session)
	c.GET("", h.GetCart)
	c.DELETE("", h.ClearCart)
	c.POST("/items", h.AddCartItem)
	c.PUT("/items/:productId", h.SetCartQuantity)
	c.DELETE("/items/:productId", h.RemoveCartItem)
	c.DELETE("/toasts/:toastId", h.DismissToast)

	admin := api.Group("/admin")
	admin.POST("/login", h.loginLimit.Middleware(), h.Login)

	secured := admin.Group("", h.auth.Middleware())
	secured.GET("/products", h.AdminListProducts)
	secured.POST("/products", h.CreateProduct)
	secured.PUT("/products/:id", h.UpdateProduct)
	secured.DELETE("/products/:id", h.DeleteProduct)
	secured.GET("/orders", h.ListOrders)
	secured.GET("/orders/:orderId", h.GetOrder)
	secured.POST("/orders/approve", h.ApproveOrder)
	secured.POST("/orders/reject", h.RejectOrder)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), domain.Category(c.Query("category")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, lookupError(id, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

// CreateOrder runs intake. On success the session cart, if any, is emptied.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	order, err := h.orders.PlaceOrder(ctx, services.PlaceOrderRequest{
		MinecraftUsername:    req.MinecraftUsername,
		Edition:              domain.Edition(req.Edition),
		TransactionReference: req.TransactionReference,
		Items:                req.lines(),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if sid := c.GetHeader(sessionHeader); validSessionID(sid) {
		if err := h.carts.Delete(ctx, sid); err != nil {
			logCartFailure(c, sid, err)
		}
	}

	c.JSON(http.StatusCreated, CreateOrderResponse{
		Success:           true,
		OrderID:           order.OrderID,
		MinecraftUsername: order.MinecraftUsername,
		Edition:           order.Edition,
		Total:             order.Total,
		Items:             order.Items,
		Message:           orderPlacedMessage,
	})
}
