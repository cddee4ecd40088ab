package staging

import (
	"context"

	id "quiverbook/pkg/domain"
)

// Store abstracts staging-score persistence. Implementations return
// sentinel errors for infrastructure facts.
type Store interface {
	Create(ctx context.Context, score *StagingScore) error
	FindByID(ctx context.Context, stagingID id.StagingScoreID) (*StagingScore, error)
	// ListPending returns pending submissions oldest-first, so the review
	// queue is fair.
	ListPending(ctx context.Context) ([]*StagingScore, error)
	// ListAll returns every submission newest-first for the audit view.
	ListAll(ctx context.Context) ([]*StagingScore, error)
	Delete(ctx context.Context, stagingID id.StagingScoreID) error

	// Execute atomically validates and mutates one record. The store holds
	// its concurrency-control mechanism (mutex, or SELECT ... FOR UPDATE
	// inside the context transaction) across both callbacks, so a
	// guard-check-then-transition is never a bare read-then-write.
	Execute(ctx context.Context, stagingID id.StagingScoreID,
		validate func(*StagingScore) error,
		apply func(*StagingScore)) (*StagingScore, error)
}
