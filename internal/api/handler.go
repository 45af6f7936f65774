package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledger/internal/kyc"
	"ledger/internal/obs"
	"ledger/internal/order"
	"ledger/internal/portfolio"
	"ledger/internal/reference"
	"ledger/internal/settlement"
	"ledger/internal/trade"
	"ledger/internal/wallet"
)

// Deps are the services exposed over HTTP.
type Deps struct {
	Orders     *order.Usecase
	Settlement *settlement.Processor
	Trades     *trade.Repository
	Ledger     *wallet.Ledger
	Registry   *reference.Registry
	Kyc        *kyc.Gate
	Portfolio  *portfolio.Valuer
	Metrics    *obs.Metrics
}

type Handler struct {
	deps Deps
}

func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	_ = r.SetTrustedProxies(nil)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", h.Metrics)

	v1 := r.Group("/api/v1")
	orders := v1.Group("/orders")
	{
		orders.POST("", h.PlaceOrder)
		orders.POST("/market-buy", h.PlaceMarketBuy)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.GET("/:id", h.GetOrder)
	}

	trades := v1.Group("/trades")
	{
		trades.POST("", h.SettleTrade)
		trades.GET("", h.TradeHistory)
	}

	users := v1.Group("/users/:user")
	{
		users.GET("/orders", h.ListOrders)
		users.POST("/kyc", h.SubmitKyc)
		users.POST("/kyc/approve", h.ApproveKyc)
		users.GET("/balances/:asset", h.Balance)
		users.GET("/portfolio", h.Portfolio)
	}
}

func (h *Handler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Metrics.Snapshot())
}
