package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "modbot"

type Metrics struct {
	Events         *prometheus.CounterVec
	Commands       *prometheus.CounterVec
	Actions        *prometheus.CounterVec
	BannedWords    prometheus.Counter
	MessagesLogged *prometheus.CounterVec
}

// New creates the bot's collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Gateway events handled, by type.",
		}, []string{"type"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Prefixed commands seen, by command and outcome.",
		}, []string{"command", "outcome"}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_actions_total",
			Help:      "Moderation actions carried out, by kind and trigger.",
		}, []string{"action", "trigger"}),
		BannedWords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "banned_words_total",
			Help:      "Messages removed for containing a banned word.",
		}),
		MessagesLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_logged_total",
			Help:      "Message audit records posted, by type.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.Events, m.Commands, m.Actions, m.BannedWords, m.MessagesLogged)
	return m
}

// Nop returns collectors registered nowhere.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
