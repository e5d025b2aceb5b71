package runtime

import (
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/graph"
)

func (c *Controller[M]) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: c.opts.scheduler.Now(), Type: t}
}

func (c *Controller[M]) emitEnter(id graph.NodeID, dir domain.Direction) {
	label, kind := c.graph.Label(id), c.graph.Kind(id)
	c.opts.logger.Debug("node entered", "node", id, "label", label, "kind", kind, "direction", dir)
	if h := c.opts.hooks.OnNodeEnter; h != nil {
		h(&domain.NodeEvent{
			EventBase: c.event(domain.EventNodeEnter),
			NodeID:    int(id),
			Label:     label,
			Kind:      kind.String(),
			Direction: dir,
		})
	}
}

// emitLeave takes label and kind explicitly because the node may already be
// released when leaving a repetition backward.
func (c *Controller[M]) emitLeave(id graph.NodeID, label string, kind graph.Kind, dir domain.Direction, skipped bool) {
	if h := c.opts.hooks.OnNodeLeave; h != nil {
		h(&domain.NodeEvent{
			EventBase: c.event(domain.EventNodeLeave),
			NodeID:    int(id),
			Label:     label,
			Kind:      kind.String(),
			Direction: dir,
			Skipped:   skipped,
		})
	}
}

func (c *Controller[M]) emitAutoDispatch(id graph.NodeID) {
	if h := c.opts.hooks.OnAutoDispatch; h != nil {
		h(&domain.NodeEvent{
			EventBase: c.event(domain.EventAutoDispatch),
			NodeID:    int(id),
			Label:     c.graph.Label(id),
			Kind:      c.graph.Kind(id).String(),
			Direction: domain.Forward,
		})
	}
}

func (c *Controller[M]) emitExit(id graph.NodeID, label string, dir domain.Direction) {
	if h := c.opts.hooks.OnFlowExit; h != nil {
		h(&domain.ExitEvent{
			EventBase: c.event(domain.EventFlowExit),
			NodeID:    int(id),
			Label:     label,
			Direction: dir,
		})
	}
}
