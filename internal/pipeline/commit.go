package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/DDP16/se-jobs-pipeline/internal/models"
)

// ApplicationStore persists stage transitions. Implementations must apply
// the patch as a single atomic write and return the updated record as the
// store reports it — the engine does not assume the store echoes back
// exactly what was sent.
type ApplicationStore interface {
	UpdateStage(ctx context.Context, applicationID uuid.UUID, patch StagePatch) (*models.Application, error)
}

// CommitError wraps a store-side failure. Cancelled is set when the caller
// aborted the commit before the store acknowledged; in that case no partial
// state exists and the caller may retry after re-reading the current stage.
type CommitError struct {
	Cancelled bool
	Err       error
}

func (e *CommitError) Error() string {
	if e.Cancelled {
		return "commit cancelled"
	}
	return fmt.Sprintf("commit failed: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// Commit persists a validated plan with exactly one write to the store. It
// performs no retry; retry policy belongs to the caller, which must also
// ensure at most one in-flight commit per application. Concurrent-update
// conflicts surface as ordinary CommitErrors from the store.
func Commit(ctx context.Context, store ApplicationStore, applicationID uuid.UUID, plan *TransitionPlan) (*models.Application, error) {
	updated, err := store.UpdateStage(ctx, applicationID, plan.Payload)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &CommitError{Cancelled: true, Err: err}
		}
		return nil, &CommitError{Err: err}
	}
	return updated, nil
}
