package runtime

import (
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// pending is a single timer slot. A fire is only honored while token still
// matches, so a stopped or replaced timer never runs its task.
type pending struct {
	timer ports.Timer
	token uint64
}

func (p *pending) cancel() {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = nil
	p.token = 0
}

func (c *Controller[M]) cancelTimers() {
	c.subState.cancel()
	c.autoDispatch.cancel()
}

func (c *Controller[M]) restartTimers() {
	c.cancelTimers()
	if c.stopped {
		return
	}
	c.scheduleSubState(0)

	node := c.current
	if d, ok := c.graph.State(node).AutoDispatchDelay(c.model); ok {
		c.arm(&c.autoDispatch, d, func() func() {
			c.opts.logger.Debug("auto dispatch", "node", node, "label", c.graph.Label(node))
			c.emitAutoDispatch(node)
			return c.next()
		})
	}
}

func (c *Controller[M]) scheduleSubState(index int) {
	delayed := c.graph.State(c.current).DelayedStates(c.model)
	if index >= len(delayed) {
		return
	}
	c.arm(&c.subState, delayed[index].Delay, func() func() {
		c.fireSubState(index)
		return nil
	})
}

func (c *Controller[M]) fireSubState(index int) {
	// The plan may depend on the model, so it is looked up again.
	delayed := c.graph.State(c.current).DelayedStates(c.model)
	if index >= len(delayed) {
		return
	}
	entry := delayed[index]
	entry.State.Apply(c.model)
	c.opts.logger.Debug("sub-state applied", "node", c.current, "index", index, "delay", entry.Delay)
	if h := c.opts.hooks.OnSubState; h != nil {
		h(&domain.SubStateEvent{
			EventBase: c.event(domain.EventSubState),
			NodeID:    int(c.current),
			Label:     c.graph.Label(c.current),
			Index:     index,
			Delay:     entry.Delay,
		})
	}
	c.scheduleSubState(index + 1)
}

// arm must be called with c.mu held. fire runs with c.mu held and may
// return an exit callback to invoke once the lock is released.
func (c *Controller[M]) arm(slot *pending, d time.Duration, fire func() func()) {
	slot.cancel()
	if d < 0 {
		d = 0
	}
	c.seq++
	token := c.seq
	slot.token = token
	slot.timer = c.opts.scheduler.AfterFunc(d, func() {
		c.opts.executor(func() {
			c.mu.Lock()
			if slot.token != token || c.stopped {
				c.mu.Unlock()
				return
			}
			slot.timer = nil
			slot.token = 0
			exit := fire()
			c.mu.Unlock()
			if exit != nil {
				exit()
			}
		})
	})
}
