package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DDP16/se-jobs-pipeline/internal/models"
	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
)

// fakeStore records calls and plays back a canned response.
type fakeStore struct {
	calls   int
	lastID  uuid.UUID
	lastPat pipeline.StagePatch
	app     *models.Application
	err     error
}

func (f *fakeStore) UpdateStage(ctx context.Context, id uuid.UUID, patch pipeline.StagePatch) (*models.Application, error) {
	f.calls++
	f.lastID = id
	f.lastPat = patch
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.app, f.err
}

func TestCommit_SingleWrite(t *testing.T) {
	id := uuid.New()
	stored := &models.Application{Status: string(pipeline.StageShortlisted)}
	fake := &fakeStore{app: stored}

	plan, err := pipeline.ValidateTransition(pipeline.StageApplied, pipeline.StageShortlisted, pipeline.TransitionData{})
	require.NoError(t, err)

	updated, err := pipeline.Commit(context.Background(), fake, id, plan)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, id, fake.lastID)
	assert.Equal(t, plan.Payload, fake.lastPat)
	// The store's response is the new source of truth, echoed or not.
	assert.Same(t, stored, updated)
}

func TestCommit_StoreFailureNoRetry(t *testing.T) {
	fake := &fakeStore{err: errors.New("conflict: application was updated concurrently")}

	plan, err := pipeline.ValidateTransition(pipeline.StageViewed, pipeline.StageShortlisted, pipeline.TransitionData{})
	require.NoError(t, err)

	_, err = pipeline.Commit(context.Background(), fake, uuid.New(), plan)

	var commitErr *pipeline.CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.False(t, commitErr.Cancelled)
	assert.Contains(t, commitErr.Error(), "conflict")
	assert.Equal(t, 1, fake.calls, "commit must not retry")
}

func TestCommit_Cancelled(t *testing.T) {
	fake := &fakeStore{}

	plan, err := pipeline.ValidateTransition(pipeline.StageApplied, pipeline.StageShortlisted, pipeline.TransitionData{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = pipeline.Commit(ctx, fake, uuid.New(), plan)

	var commitErr *pipeline.CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.True(t, commitErr.Cancelled)
	assert.True(t, errors.Is(err, context.Canceled))
}
