package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Allocation outcomes.
const (
	OutcomeAllocated        = "allocated"
	OutcomeAlreadyAllocated = "already_allocated"
	OutcomeRejected         = "rejected"
	OutcomeConflict         = "conflict"
	OutcomeFailed           = "failed"
)

// Metrics holds the Prometheus collectors of the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AllocationsTotal    *prometheus.CounterVec
	WinnersAssigned     *prometheus.CounterVec
	WinnerQueriesTotal  *prometheus.CounterVec
	RegistrationsTotal  prometheus.Counter
	MintsTotal          *prometheus.CounterVec
	StaleReferenceTotal prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AllocationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "advent_raffle_allocations_total",
			Help: "Raffle allocation calls by outcome",
		}, []string{"outcome"}),
		WinnersAssigned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "advent_raffle_winners_assigned_total",
			Help: "Winner assignments created, by door",
		}, []string{"door"}),
		WinnerQueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "advent_raffle_winner_queries_total",
			Help: "Winner lookups by result",
		}, []string{"result"}),
		RegistrationsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "advent_raffle_registrations_total",
			Help: "Wallets registered",
		}),
		MintsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "advent_raffle_mints_total",
			Help: "Door mints, split by whether the record was new",
		}, []string{"created"}),
		StaleReferenceTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "advent_raffle_stale_prize_references_total",
			Help: "Winner records pointing at a prize that no longer resolves",
		}),
	}
}

func (m *Metrics) ObserveAllocation(outcome string) {
	if m == nil {
		return
	}
	m.AllocationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddWinners(door string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.WinnersAssigned.WithLabelValues(door).Add(float64(n))
}

func (m *Metrics) ObserveWinnerQuery(result string) {
	if m == nil {
		return
	}
	m.WinnerQueriesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncRegistrations() {
	if m == nil {
		return
	}
	m.RegistrationsTotal.Inc()
}

func (m *Metrics) ObserveMint(created bool) {
	if m == nil {
		return
	}
	label := "false"
	if created {
		label = "true"
	}
	m.MintsTotal.WithLabelValues(label).Inc()
}

func (m *Metrics) IncStaleReference() {
	if m == nil {
		return
	}
	m.StaleReferenceTotal.Inc()
}
