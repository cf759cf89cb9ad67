package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "verify_relay"

// Metrics holds the relay's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	events        *prometheus.CounterVec
	challenges    prometheus.Counter
	answers       *prometheus.CounterVec
	relayed       *prometheus.CounterVec
	fraudWarnings prometheus.Counter
	transportErrs *prometheus.CounterVec
	purged        prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_events_total",
			Help:      "Inbound events by kind.",
		}, []string{"kind"}),
		challenges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_issued_total",
			Help:      "Verification challenges issued.",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenge_answers_total",
			Help:      "Challenge answers by result.",
		}, []string{"result"}),
		relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relayed_messages_total",
			Help:      "Messages relayed by direction.",
		}, []string{"direction"}),
		fraudWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fraud_warnings_total",
			Help:      "Fraud warnings sent to the operator.",
		}),
		transportErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_errors_total",
			Help:      "Dropped outbound platform calls by action.",
		}, []string{"action"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purged_entries_total",
			Help:      "Expired store entries removed by compaction.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.events,
			m.challenges,
			m.answers,
			m.relayed,
			m.fraudWarnings,
			m.transportErrs,
			m.purged,
		)
	}
	return m
}

func (m *Metrics) Event(kind string) {
	if m != nil {
		m.events.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ChallengeIssued() {
	if m != nil {
		m.challenges.Inc()
	}
}

func (m *Metrics) Answer(result string) {
	if m != nil {
		m.answers.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Relayed(direction string) {
	if m != nil {
		m.relayed.WithLabelValues(direction).Inc()
	}
}

func (m *Metrics) FraudWarning() {
	if m != nil {
		m.fraudWarnings.Inc()
	}
}

func (m *Metrics) TransportError(action string) {
	if m != nil {
		m.transportErrs.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) Purged(n int64) {
	if m != nil && n > 0 {
		m.purged.Add(float64(n))
	}
}
