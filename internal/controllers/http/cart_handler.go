package http

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/repository"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionHeader = "X-Session-ID"
	sessionKey    = "sessionID"
)

func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// session resolves the cart session from X-Session-ID, issuing a new id
// when the header is missing or malformed. The id is echoed back.
func (h *Handler) session(c *gin.Context) {
	id := c.GetHeader(sessionHeader)
	if !validSessionID(id) {
		id = uuid.NewString()
	}
	c.Header(sessionHeader, id)
	c.Set(sessionKey, id)
	c.Next()
}

func logCartFailure(c *gin.Context, sessionID string, err error) {
	slog.WarnContext(c.Request.Context(), "cart store failed", "session_id", sessionID, "error", err)
}

func lookupError(productID string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &services.UnknownProductError{ProductID: productID}
	}
	return err
}

func (h *Handler) GetCart(c *gin.Context) {
	sid := c.GetString(sessionKey)
	crt, err := h.carts.Load(c.Request.Context(), sid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(sid, crt))
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "productId is required")
		return
	}
	ctx := c.Request.Context()
	sid := c.GetString(sessionKey)

	p, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		writeError(c, lookupError(req.ProductID, err))
		return
	}
	crt, err := h.carts.Load(ctx, sid)
	if err != nil {
		writeError(c, err)
		return
	}
	toast := crt.Add(*p)
	if err := h.carts.Save(ctx, sid, crt); err != nil {
		writeError(c, err)
		return
	}

	resp := newCartResponse(sid, crt)
	resp.Toast = &toast
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SetCartQuantity(c *gin.Context) {
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "quantity is required")
		return
	}
	h.mutateCart(c, func(crt *cart.Cart) { crt.SetQuantity(c.Param("productId"), *req.Quantity) })
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	h.mutateCart(c, func(crt *cart.Cart) { crt.Remove(c.Param("productId")) })
}

func (h *Handler) ClearCart(c *gin.Context) {
	h.mutateCart(c, func(crt *cart.Cart) { crt.Clear() })
}

func (h *Handler) DismissToast(c *gin.Context) {
	id := c.Param("toastId")
	if _, err := uuid.Parse(id); err != nil {
		writeBadRequest(c, "invalid toast id")
		return
	}
	h.mutateCart(c, func(crt *cart.Cart) { crt.DismissToast(id) })
}

// mutateCart loads the session cart, applies fn and stores the result.
func (h *Handler) mutateCart(c *gin.Context, fn func(*cart.Cart)) {
	ctx := c.Request.Context()
	sid := c.GetString(sessionKey)

	crt, err := h.carts.Load(ctx, sid)
	if err != nil {
		writeError(c, err)
		return
	}
	fn(crt)
	if err := h.carts.Save(ctx, sid, crt); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(sid, crt))
}
