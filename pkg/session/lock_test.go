package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/domain"
)

type noop struct{}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nil, func(context.Context, string) (*stepwise.Controller[*noop], *noop, error) {
		m := &noop{}
		ctrl, err := stepwise.NewFromStates(m, []domain.State[*noop]{domain.Funcs[*noop]{}})
		return ctrl, m, err
	})
	ctx := context.Background()
	count := 1000

	// 1. Create and Delete many sessions
	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _ = mgr.LoadOrCreate(ctx, sid)
		_ = mgr.Delete(ctx, sid)
	}

	// 2. Count locks remaining in map
	lockCount := len(mgr.locks)

	t.Logf("Sessions Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
