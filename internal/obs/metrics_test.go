package obs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yanun0323/errors"

	"ledger/pkg/exception"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()

	m.ObserveAdmission(nil, 2*time.Millisecond)
	m.ObserveAdmission(errors.Wrap(exception.ErrInsufficientFunds, "alice"), 4*time.Millisecond)
	m.ObserveAdmission(exception.ErrWalletNotFound, time.Millisecond)
	m.ObserveSettlement(nil, time.Millisecond)
	m.ObserveSettlement(exception.ErrInvalidTrade, time.Millisecond)
	m.IncCanceled()
	m.IncEventDrop()

	s := m.Snapshot()
	assert.Equal(t, uint64(1), s.OrdersAdmitted)
	assert.Equal(t, map[string]uint64{"insufficient_funds": 2}, s.Rejections)
	assert.Equal(t, map[string]uint64{"invalid_trade": 1}, s.SettlementAborts)
	assert.Equal(t, uint64(1), s.TradesSettled)
	assert.Equal(t, uint64(1), s.OrdersCanceled)
	assert.Equal(t, uint64(1), s.EventDrops)
	assert.Equal(t, uint64(3), s.AdmissionLatency.Count)
	assert.Equal(t, time.Millisecond, s.AdmissionLatency.Min)
	assert.Equal(t, 4*time.Millisecond, s.AdmissionLatency.Max)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveAdmission(nil, time.Second)
	m.IncCanceled()
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestReasonOf(t *testing.T) {
	assert.Equal(t, ReasonNone, ReasonOf(nil))
	assert.Equal(t, ReasonNoPrice, ReasonOf(errors.Wrap(exception.ErrNoPriceAvailable, "BTC/USDT")))
	assert.Equal(t, ReasonPairInactive, ReasonOf(exception.ErrPairInactive))
	assert.Equal(t, ReasonUnknownPair, ReasonOf(exception.ErrUnknownPair))
	assert.Equal(t, ReasonInvalidOrder, ReasonOf(exception.ErrInvalidOrder))
	assert.Equal(t, ReasonNotFound, ReasonOf(exception.ErrOrderNotFound))
	assert.Equal(t, ReasonInvalidArgument, ReasonOf(exception.ErrInvalidCursor))
	assert.Equal(t, ReasonOther, ReasonOf(exception.ErrInternal))
	assert.Equal(t, "insufficient_funds", ReasonInsufficientFunds.String())
}

func TestReasonOfWrappedTwice(t *testing.T) {
	inner := errors.Wrapf(exception.ErrInsufficientFunds, "wallet %s available: %s", "alice/1", "1.5").With("user", "alice")
	outer := errors.Wrap(inner, "place order")
	assert.Equal(t, ReasonInsufficientFunds, ReasonOf(outer))
	assert.Equal(t, ReasonUnknownPair, ReasonOf(errors.Wrap(errors.Wrap(exception.ErrUnknownPair, "XRP/USDT"), "resolve")))
}
