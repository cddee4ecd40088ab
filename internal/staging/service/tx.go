package service

import (
	"context"
	"sync"
)

// StoreTx provides the transactional boundary for the approval pipeline.
// The postgres implementation (cmd/server) wraps a database transaction and
// carries it through context; the in-memory one is a coarse lock, which
// serializes transitions but cannot roll back.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type inMemoryStoreTx struct {
	mu sync.Mutex
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
