package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type balanceResponse struct {
	UserID    string          `json:"userId"`
	Asset     string          `json:"asset"`
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
	Total     decimal.Decimal `json:"total"`
}

func (h *Handler) Balance(c *gin.Context) {
	ctx := c.Request.Context()
	asset, err := h.deps.Registry.AssetBySymbol(ctx, c.Param("asset"))
	if err != nil {
		fail(c, err)
		return
	}

	user := c.Param("user")
	w, err := h.deps.Ledger.Balance(ctx, user, asset.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, balanceResponse{
		UserID:    user,
		Asset:     asset.Symbol,
		Available: w.Available,
		Locked:    w.Locked,
		Total:     w.Total(),
	})
}

func (h *Handler) Portfolio(c *gin.Context) {
	v, err := h.deps.Portfolio.Value(c.Request.Context(), c.Param("user"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) SubmitKyc(c *gin.Context) {
	rec, err := h.deps.Kyc.Submit(c.Request.Context(), c.Param("user"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ApproveKyc always answers 200 unless storage fails; a missing pending record is reported as a notice.
func (h *Handler) ApproveKyc(c *gin.Context) {
	out, err := h.deps.Kyc.Approve(c.Request.Context(), c.Param("user"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
