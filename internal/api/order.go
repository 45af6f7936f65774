package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger/internal/model/enum"
	"ledger/internal/order"
)

type marketBuyRequest struct {
	UserID string          `json:"userId" binding:"required"`
	Pair   string          `json:"pair" binding:"required"`
	Spend  decimal.Decimal `json:"spend"`
}

type cancelRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req order.PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	o, err := h.deps.Orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) PlaceMarketBuy(c *gin.Context) {
	var req marketBuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	o, err := h.deps.Orders.PlaceMarketBuyOrder(c.Request.Context(), req.UserID, req.Pair, req.Spend)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	o, err := h.deps.Orders.CancelOrder(c.Request.Context(), req.UserID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}

	o, err := h.deps.Orders.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) ListOrders(c *gin.Context) {
	var status enum.OrderStatus
	if s := c.Query("status"); s != "" {
		if err := status.UnmarshalText([]byte(s)); err != nil {
			fail(c, err)
			return
		}
	}

	orders, err := h.deps.Orders.ListOrders(c.Request.Context(), c.Param("user"), status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
