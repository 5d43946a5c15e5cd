package program

import (
	"errors"
	"time"

	"raffle/internal/raffle"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type programMetrics struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	ticketsSold  prometheus.Counter
	feesAccrued  prometheus.Counter
	prizesPaid   prometheus.Counter
	ledgerClosed prometheus.Counter
}

func newProgramMetrics(registry prometheus.Registerer) *programMetrics {
	promautoFactory := promauto.With(registry)
	return &programMetrics{
		operations: promautoFactory.NewCounterVec(prometheus.CounterOpts{
			Name: "raffle_operations_total",
			Help: "operations by name and result",
		}, []string{"operation", "result"}),
		duration: promautoFactory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "raffle_operation_duration_seconds",
			Help:    "operation latency including storage retries",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ticketsSold: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "raffle_tickets_sold_total",
			Help: "tickets sold across all raffles",
		}),
		feesAccrued: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "raffle_fees_accrued_nanos_total",
			Help: "operator fees accrued on ticket sales",
		}),
		prizesPaid: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "raffle_prizes_paid_nanos_total",
			Help: "prizes paid to winners",
		}),
		ledgerClosed: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "raffle_ledgers_closed_total",
			Help: "entrant ledgers closed",
		}),
	}
}

func (m *programMetrics) observe(operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *programMetrics) purchase(p *raffle.Purchase) {
	if m == nil {
		return
	}
	m.ticketsSold.Add(float64(p.Quantity))
	m.feesAccrued.Add(float64(p.Fee))
}

func (m *programMetrics) settlement(s *raffle.Settlement) {
	if m == nil {
		return
	}
	m.prizesPaid.Add(float64(s.Prize))
}

func (m *programMetrics) closed() {
	if m == nil {
		return
	}
	m.ledgerClosed.Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, raffle.ErrArithmeticOverflow):
		return "overflow"
	case errors.Is(err, raffle.ErrUnauthorized), errors.Is(err, raffle.ErrNotWinner):
		return "unauthorized"
	default:
		return "rejected"
	}
}
