package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"decotree/pkg/tree"
)

// PrometheusRecorder counts hook events and tracks live entities per kind.
type PrometheusRecorder struct {
	events *prometheus.CounterVec
	live   *prometheus.GaugeVec
}

// NewPrometheusRecorder registers its collectors with reg. When reg is nil the
// collectors are created but not registered. Collectors already registered
// under the same names are reused.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decotree",
		Name:      "hook_events_total",
		Help:      "Tree lifecycle hooks fired, by entity kind and hook.",
	}, []string{"kind", "hook"})
	live := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "decotree",
		Name:      "live_entities",
		Help:      "Entities initialized and not yet destroyed, by kind.",
	}, []string{"kind"})

	if reg != nil {
		var err error
		if events, err = registerOrReuse(reg, events); err != nil {
			return nil, err
		}
		if live, err = registerOrReuse(reg, live); err != nil {
			return nil, err
		}
	}
	return &PrometheusRecorder{events: events, live: live}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Record implements Recorder.
func (p *PrometheusRecorder) Record(e Event) {
	p.events.WithLabelValues(string(e.Kind), string(e.Hook)).Inc()
	switch {
	case e.Hook == tree.HookCreateList:
		p.live.WithLabelValues(string(tree.KindNodeList)).Inc()
	case e.Hook == tree.HookInit && e.Kind != tree.KindNodeList:
		p.live.WithLabelValues(string(e.Kind)).Inc()
	case e.Hook == tree.HookDestroy:
		p.live.WithLabelValues(string(e.Kind)).Dec()
	}
}

// Collectors returns the underlying collectors.
func (p *PrometheusRecorder) Collectors() (*prometheus.CounterVec, *prometheus.GaugeVec) {
	return p.events, p.live
}
