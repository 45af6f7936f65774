package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yanun0323/logs"

	"ledger/internal/obs"
	"ledger/pkg/exception"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

var statusOf = []struct {
	target error
	status int
}{
	{exception.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{exception.ErrWalletNotFound, http.StatusUnprocessableEntity},
	{exception.ErrNoPriceAvailable, http.StatusUnprocessableEntity},
	{exception.ErrPairInactive, http.StatusConflict},
	{exception.ErrOrderNotOpen, http.StatusConflict},
	{exception.ErrUnknownPair, http.StatusNotFound},
	{exception.ErrUnknownAsset, http.StatusNotFound},
	{exception.ErrOrderNotFound, http.StatusNotFound},
	{exception.ErrInvalidOrder, http.StatusBadRequest},
	{exception.ErrInvalidTrade, http.StatusBadRequest},
	{exception.ErrInvalidAmount, http.StatusBadRequest},
	{exception.ErrInvalidCursor, http.StatusBadRequest},
	{exception.ErrInvalidEnum, http.StatusBadRequest},
	{exception.ErrInvalidArgument, http.StatusBadRequest},
}

func httpStatus(err error) int {
	for _, s := range statusOf {
		if errors.Is(err, s.target) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		logs.Errorf("%s %s, err: %+v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, errorResponse{Error: "internal error", Reason: obs.ReasonOther.String()})
		return
	}
	c.JSON(status, errorResponse{Error: err.Error(), Reason: obs.ReasonOf(err).String()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Reason: "bad_request"})
}
