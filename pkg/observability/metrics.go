package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Metrics holds the Prometheus collectors for navigation.
type Metrics struct {
	NodeVisits     *prometheus.CounterVec
	SkippedNodes   *prometheus.CounterVec
	SubStates      *prometheus.CounterVec
	AutoDispatches *prometheus.CounterVec
	FlowExits      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stepwise",
				Name:      "node_visits_total",
				Help:      "Total number of node entries",
			},
			[]string{"node", "direction"},
		),
		SkippedNodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stepwise",
				Name:      "skipped_nodes_total",
				Help:      "Nodes passed over on the way back because of their back behavior",
			},
			[]string{"node"},
		),
		SubStates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stepwise",
				Name:      "sub_states_total",
				Help:      "Delayed sub-states applied",
			},
			[]string{"node"},
		),
		AutoDispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stepwise",
				Name:      "auto_dispatches_total",
				Help:      "Timed automatic advances",
			},
			[]string{"node"},
		),
		FlowExits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stepwise",
				Name:      "flow_exits_total",
				Help:      "Navigation past either end of the flow",
			},
			[]string{"direction"},
		),
	}

	for _, c := range []prometheus.Collector{m.NodeVisits, m.SkippedNodes, m.SubStates, m.AutoDispatches, m.FlowExits} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register navigation metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(nodeName(e.NodeID, e.Label), string(e.Direction)).Inc()
		},
		OnNodeLeave: func(e *domain.NodeEvent) {
			if e.Skipped {
				m.SkippedNodes.WithLabelValues(nodeName(e.NodeID, e.Label)).Inc()
			}
		},
		OnSubState: func(e *domain.SubStateEvent) {
			m.SubStates.WithLabelValues(nodeName(e.NodeID, e.Label)).Inc()
		},
		OnAutoDispatch: func(e *domain.NodeEvent) {
			m.AutoDispatches.WithLabelValues(nodeName(e.NodeID, e.Label)).Inc()
		},
		OnFlowExit: func(e *domain.ExitEvent) {
			m.FlowExits.WithLabelValues(string(e.Direction)).Inc()
		},
	}
}
