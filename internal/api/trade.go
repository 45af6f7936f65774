package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ledger/internal/model"
	"ledger/internal/settlement"
	"ledger/internal/trade"
)

type historyResponse struct {
	Pair   string        `json:"pair"`
	Trades []model.Trade `json:"trades"`
	Next   string        `json:"next,omitempty"`
}

func (h *Handler) SettleTrade(c *gin.Context) {
	var req settlement.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	t, err := h.deps.Settlement.SettleTrade(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// TradeHistory pages trades of ?pair= newest first. ?before= takes the next cursor of a previous page.
func (h *Handler) TradeHistory(c *gin.Context) {
	pair, err := h.deps.Registry.PairByName(c.Request.Context(), c.Query("pair"))
	if err != nil {
		fail(c, err)
		return
	}
	before, err := trade.ParseCursor(c.Query("before"))
	if err != nil {
		fail(c, err)
		return
	}
	limit := 0
	if s := c.Query("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			badRequest(c, err)
			return
		}
	}

	page, err := h.deps.Trades.History(c.Request.Context(), pair.ID, before, limit)
	if err != nil {
		fail(c, err)
		return
	}
	trades := page.Trades
	if trades == nil {
		trades = []model.Trade{}
	}
	c.JSON(http.StatusOK, historyResponse{Pair: pair.Name, Trades: trades, Next: page.Next.String()})
}
