package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/K-Gaydukov/marketplace/internal/adapter/http/middleware"
	"github.com/K-Gaydukov/marketplace/internal/apperr"
	"github.com/K-Gaydukov/marketplace/internal/entity"
	"github.com/K-Gaydukov/marketplace/internal/usecase"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders *usecase.OrderService
}

func NewOrderHandler(orders *usecase.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GET /v1/orders?status=&userId=&page=&size=
func (h *OrderHandler) ListOrders(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	q := usecase.ListQuery{
		Status: c.Query("status"),
		Page:   intQuery(c, "page", 0),
		Size:   intQuery(c, "size", 20),
	}
	if raw := c.Query("userId"); raw != "" {
		uid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "userId must be an integer")
			return
		}
		q.UserID = &uid
	}

	page, err := h.orders.ListOrders(c.Request.Context(), p, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResp(page))
}

// POST /v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req orderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	idemKey := c.GetHeader("X-Idempotency-Key") // prevent duplicated requests

	order, err := h.orders.CreateOrder(c.Request.Context(), p, toItemReqs(req.Items), idemKey)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResp(order))
}

// GET /v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// PUT /v1/orders/:id — full item replacement
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req orderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), p, id, toItemReqs(req.Items))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// DELETE /v1/orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(c.Request.Context(), p, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /v1/orders/:id/status — admin only
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), p, id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// POST /v1/orders/:id/items
func (h *OrderHandler) AddOrderItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req orderItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	order, err := h.orders.AddOrderItem(c.Request.Context(), p, id,
		usecase.ItemRequest{ProductID: req.ProductID, Quantity: req.Quantity})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// PUT /v1/orders/:id/items/:itemId
func (h *OrderHandler) UpdateOrderItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	var req orderItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed request body")
		return
	}

	order, err := h.orders.UpdateOrderItem(c.Request.Context(), p, id, itemID,
		usecase.ItemRequest{ProductID: req.ProductID, Quantity: req.Quantity})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// DELETE /v1/orders/:id/items/:itemId
func (h *OrderHandler) DeleteOrderItem(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	order, err := h.orders.DeleteOrderItem(c.Request.Context(), p, id, itemID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// --- helpers ---

func principal(c *gin.Context) (entity.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_request", "message": "not authenticated"})
	}
	return p, ok
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msg, "path": c.Request.URL.Path})
}

// writeError maps the error taxonomy onto status codes:
// not_found 404, validation 422, access_denied 403, conflict 409,
// anything upstream/unknown 502 without leaking internals.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	// message from the kinded error only; wrapped causes stay internal
	msg := "internal failure"
	var e *apperr.Error
	if errors.As(err, &e) {
		msg = e.Msg
	}

	status := http.StatusBadGateway
	switch kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusUnprocessableEntity
	case apperr.KindAccessDenied:
		status = http.StatusForbidden
	case apperr.KindConflict:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": kind.String(), "message": msg, "path": c.Request.URL.Path})
}
