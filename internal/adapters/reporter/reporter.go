package reporter

import (
	"errors"

	"messengerbots/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

const namespace = "messengerbots"

// Prometheus logs internal faults and counts them along with bot action runs.
type Prometheus struct {
	faults  *prometheus.CounterVec
	actions *prometheus.CounterVec
}

func NewPrometheus(registerer prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "faults_total",
				Help:      "Internal failures reported while rendering messages or running bot actions.",
			},
			[]string{"kind"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bot_actions_total",
				Help:      "Bot handler invocations by handler and outcome.",
			},
			[]string{"handler", "result"},
		),
	}

	for _, c := range []prometheus.Collector{p.faults, p.actions} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Prometheus) Report(err error) {
	if err == nil {
		return
	}

	kind := faultKind(err)
	log.Error().Err(err).Str("kind", kind).Msg("internal fault")
	p.faults.WithLabelValues(kind).Inc()
}

func (p *Prometheus) RecordAction(handler string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	p.actions.WithLabelValues(handler, result).Inc()
}

func faultKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrHandlerExecution):
		return "handler"
	case errors.Is(err, domain.ErrSendingReplyFailed):
		return "send"
	case errors.Is(err, domain.ErrStoreNotOpen):
		return "store"
	default:
		return "other"
	}
}
