package observability

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/stepwise/pkg/domain"
)

// nodeName is the label used for a node in logs and metrics.
func nodeName(id int, label string) string {
	if label != "" {
		return label
	}
	return fmt.Sprintf("#%d", id)
}

// LoggingHooks logs every navigation event at Info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(e *domain.NodeEvent) {
			logger.Info("node_enter",
				"node", nodeName(e.NodeID, e.Label),
				"kind", e.Kind,
				"direction", e.Direction,
			)
		},
		OnNodeLeave: func(e *domain.NodeEvent) {
			logger.Info("node_leave",
				"node", nodeName(e.NodeID, e.Label),
				"direction", e.Direction,
				"skipped", e.Skipped,
			)
		},
		OnSubState: func(e *domain.SubStateEvent) {
			logger.Info("sub_state",
				"node", nodeName(e.NodeID, e.Label),
				"index", e.Index,
				"delay", e.Delay,
			)
		},
		OnAutoDispatch: func(e *domain.NodeEvent) {
			logger.Info("auto_dispatch", "node", nodeName(e.NodeID, e.Label))
		},
		OnFlowExit: func(e *domain.ExitEvent) {
			logger.Info("flow_exit",
				"node", nodeName(e.NodeID, e.Label),
				"direction", e.Direction,
			)
		},
	}
}
