package http

import (
	"net/http"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "password is required")
		return
	}
	token, exp, err := h.auth.Login(req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "expiresAt": exp})
}

func (h *Handler) AdminListProducts(c *gin.Context) {
	h.ListProducts(c)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid request body")
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), req.product())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": p})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid request body")
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), req.product())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListOrders returns orders newest first with counters for every status.
func (h *Handler) ListOrders(c *gin.Context) {
	status := domain.OrderStatus(strings.ToLower(c.Query("status")))
	if status == "all" {
		status = ""
	}
	orders, counts, err := h.reviews.Overview(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders, "counts": counts})
}

func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.reviews.Get(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
}

func (h *Handler) ApproveOrder(c *gin.Context) {
	h.review(c, domain.StatusSuccess)
}

func (h *Handler) RejectOrder(c *gin.Context) {
	h.review(c, domain.StatusRejected)
}

func (h *Handler) review(c *gin.Context, to domain.OrderStatus) {
	var req ReviewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	var (
		o   *domain.Order
		err error
	)
	if to == domain.StatusSuccess {
		o, err = h.reviews.Approve(ctx, req.OrderID)
	} else {
		o, err = h.reviews.Reject(ctx, req.OrderID)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
}
