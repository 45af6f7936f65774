package obs

import (
	"sync/atomic"
	"time"
)

// Metrics collects lightweight counters and latency stats.
type Metrics struct {
	rejectionCounts [reasonCount]uint64
	abortCounts     [reasonCount]uint64
	ordersAdmitted  uint64
	ordersCanceled  uint64
	tradesSettled   uint64
	eventDrops      uint64

	admissionLatency  LatencyStats
	settlementLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count atomic.Uint64
	total atomic.Uint64
	low   atomic.Uint64 // 0 until the first sample
	high  atomic.Uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64        `json:"count"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Avg   time.Duration `json:"avg"`
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Rejections        map[string]uint64 `json:"rejections"`
	SettlementAborts  map[string]uint64 `json:"settlementAborts"`
	OrdersAdmitted    uint64            `json:"ordersAdmitted"`
	OrdersCanceled    uint64            `json:"ordersCanceled"`
	TradesSettled     uint64            `json:"tradesSettled"`
	EventDrops        uint64            `json:"eventDrops"`
	AdmissionLatency  LatencySnapshot   `json:"admissionLatency"`
	SettlementLatency LatencySnapshot   `json:"settlementLatency"`
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveAdmission records the outcome and latency of one order admission.
func (m *Metrics) ObserveAdmission(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.admissionLatency.Observe(d)
	if reason := ReasonOf(err); reason != ReasonNone {
		atomic.AddUint64(&m.rejectionCounts[reason], 1)
		return
	}
	atomic.AddUint64(&m.ordersAdmitted, 1)
}

// ObserveSettlement records the outcome and latency of one settlement.
func (m *Metrics) ObserveSettlement(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.settlementLatency.Observe(d)
	if reason := ReasonOf(err); reason != ReasonNone {
		atomic.AddUint64(&m.abortCounts[reason], 1)
		return
	}
	atomic.AddUint64(&m.tradesSettled, 1)
}

// IncCanceled records a canceled order.
func (m *Metrics) IncCanceled() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersCanceled, 1)
}

// IncEventDrop records an event that could not be queued for publishing.
func (m *Metrics) IncEventDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.eventDrops, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Rejections:        loadReasons(&m.rejectionCounts),
		SettlementAborts:  loadReasons(&m.abortCounts),
		OrdersAdmitted:    atomic.LoadUint64(&m.ordersAdmitted),
		OrdersCanceled:    atomic.LoadUint64(&m.ordersCanceled),
		TradesSettled:     atomic.LoadUint64(&m.tradesSettled),
		EventDrops:        atomic.LoadUint64(&m.eventDrops),
		AdmissionLatency:  m.admissionLatency.Snapshot(),
		SettlementLatency: m.settlementLatency.Snapshot(),
	}
}

func loadReasons(counts *[reasonCount]uint64) map[string]uint64 {
	out := make(map[string]uint64)
	for i := range counts {
		if v := atomic.LoadUint64(&counts[i]); v > 0 {
			out[Reason(i).String()] = v
		}
	}
	return out
}

// Observe records a duration sample. Negative durations are ignored.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	n := uint64(d)
	l.count.Add(1)
	l.total.Add(n)
	swapWhile(&l.low, n, func(cur uint64) bool { return cur == 0 || n < cur })
	swapWhile(&l.high, n, func(cur uint64) bool { return n > cur })
}

// swapWhile stores n into v for as long as better reports the current value should be replaced.
func swapWhile(v *atomic.Uint64, n uint64, better func(cur uint64) bool) {
	for cur := v.Load(); better(cur); cur = v.Load() {
		if v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (l *LatencyStats) Snapshot() LatencySnapshot {
	n := l.count.Load()
	if n == 0 {
		return LatencySnapshot{}
	}
	return LatencySnapshot{
		Count: n,
		Min:   time.Duration(l.low.Load()),
		Max:   time.Duration(l.high.Load()),
		Avg:   time.Duration(l.total.Load() / n),
	}
}
