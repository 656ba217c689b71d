package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steltz/stepper/internal/runtime"
	"github.com/steltz/stepper/pkg/adapters/memory"
	"github.com/steltz/stepper/pkg/catalog"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(runtime.NewEngine(catalog.Default()), memory.NewStore())
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		id, _, err := mgr.Create(ctx)
		require.NoError(t, err)
		_, _ = mgr.Get(ctx, id)
		_ = mgr.Delete(ctx, id)
		_ = mgr.Delete(ctx, fmt.Sprintf("missing-%d", i))
	}

	assert.Empty(t, mgr.locks, "locks must be released once no caller holds them")
}
