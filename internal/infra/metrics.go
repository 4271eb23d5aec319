package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external
// dependencies. Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	eventsProcessed atomic.Uint64
	ordersOpened    atomic.Uint64
	ordersClosed    atomic.Uint64
	itemEdits       atomic.Uint64
	opsRejected     atomic.Uint64
	errorsTotal     atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	gatewayConnected atomic.Int32 // 1 = connected, 0 = down
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordEvent records one dispatched command with its latency.
func (m *Metrics) RecordEvent(latencyNs int64) {
	m.eventsProcessed.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordOrderOpened counts a successful order creation.
func (m *Metrics) RecordOrderOpened() {
	m.ordersOpened.Add(1)
}

// RecordOrderClosed counts a successful settlement.
func (m *Metrics) RecordOrderClosed() {
	m.ordersClosed.Add(1)
}

// RecordItemEdit counts a committed quantity or price edit.
func (m *Metrics) RecordItemEdit() {
	m.itemEdits.Add(1)
}

// RecordRejected counts a user-facing rejection (validation, guard,
// empty order). These are normal traffic, not faults.
func (m *Metrics) RecordRejected() {
	m.opsRejected.Add(1)
}

// RecordError records a fault.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// SetGatewayConnected sets the gateway connection gauge.
func (m *Metrics) SetGatewayConnected(connected bool) {
	if connected {
		m.gatewayConnected.Store(1)
	} else {
		m.gatewayConnected.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	EventsProcessed  uint64
	OrdersOpened     uint64
	OrdersClosed     uint64
	ItemEdits        uint64
	OpsRejected      uint64
	ErrorsTotal      uint64
	AvgLatencyNs     int64
	GatewayConnected bool
	Timestamp        time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		EventsProcessed:  m.eventsProcessed.Load(),
		OrdersOpened:     m.ordersOpened.Load(),
		OrdersClosed:     m.ordersClosed.Load(),
		ItemEdits:        m.itemEdits.Load(),
		OpsRejected:      m.opsRejected.Load(),
		ErrorsTotal:      m.errorsTotal.Load(),
		AvgLatencyNs:     avgLatency,
		GatewayConnected: m.gatewayConnected.Load() == 1,
		Timestamp:        time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.eventsProcessed.Store(0)
	m.ordersOpened.Store(0)
	m.ordersClosed.Store(0)
	m.itemEdits.Store(0)
	m.opsRejected.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.gatewayConnected.Store(0)
}
