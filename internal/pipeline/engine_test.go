package pipeline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
)

func TestValidateTransition_IllegalTransition(t *testing.T) {
	_, err := pipeline.ValidateTransition(pipeline.StageShortlisted, pipeline.StageApplied, pipeline.TransitionData{})

	var illegal *pipeline.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, pipeline.StageShortlisted, illegal.From)
	assert.Equal(t, pipeline.StageApplied, illegal.To)
}

func TestValidateTransition_FromTerminal(t *testing.T) {
	for _, from := range []pipeline.Stage{pipeline.StageHired, pipeline.StageRejected, pipeline.StageCancelled} {
		_, err := pipeline.ValidateTransition(from, pipeline.StageShortlisted, pipeline.TransitionData{})

		var illegal *pipeline.IllegalTransitionError
		assert.ErrorAs(t, err, &illegal, "transition out of terminal stage %s must fail", from)
	}
}

// Every pair in the transition table, attempted with empty data, must fail
// with MissingDataError exactly when the target needs auxiliary data, and
// produce a plan otherwise.
func TestValidateTransition_EmptyDataMatrix(t *testing.T) {
	for _, from := range allStages {
		for _, to := range pipeline.AllowedTargets(from) {
			plan, err := pipeline.ValidateTransition(from, to, pipeline.TransitionData{})

			needsData := to == pipeline.StageOffered || to == pipeline.StageInterviewScheduled
			if needsData {
				var missing *pipeline.MissingDataError
				assert.ErrorAs(t, err, &missing, "%s → %s with empty data", from, to)
			} else {
				require.NoError(t, err, "%s → %s with empty data", from, to)
				assert.Equal(t, to, plan.Target)
				assert.Equal(t, to, plan.Payload.Status)
			}
		}
	}
}

func TestValidateTransition_HireRequiresConfirmation(t *testing.T) {
	plan, err := pipeline.ValidateTransition(pipeline.StageApplied, pipeline.StageHired, pipeline.TransitionData{})
	require.NoError(t, err)
	assert.True(t, plan.RequiresConfirmation)

	plan, err = pipeline.ValidateTransition(pipeline.StageOffered, pipeline.StageRejected, pipeline.TransitionData{})
	require.NoError(t, err)
	assert.True(t, plan.RequiresConfirmation)

	plan, err = pipeline.ValidateTransition(pipeline.StageApplied, pipeline.StageShortlisted, pipeline.TransitionData{})
	require.NoError(t, err)
	assert.False(t, plan.RequiresConfirmation)
}

func TestValidateTransition_OfferNeedsSalary(t *testing.T) {
	_, err := pipeline.ValidateTransition(pipeline.StageApplied, pipeline.StageOffered, pipeline.TransitionData{})

	var missing *pipeline.MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "offered_salary", missing.Field)

	plan, err := pipeline.ValidateTransition(pipeline.StageApplied, pipeline.StageOffered, pipeline.TransitionData{
		OfferedSalary: "5000 USD",
	})
	require.NoError(t, err)
	assert.Equal(t, pipeline.StagePatch{
		Status:        pipeline.StageOffered,
		OfferedSalary: "5000 USD",
	}, plan.Payload)
}

func TestValidateTransition_InterviewNeedsTimeAndLocation(t *testing.T) {
	when := time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC)

	plan, err := pipeline.ValidateTransition(pipeline.StageShortlisted, pipeline.StageInterviewScheduled, pipeline.TransitionData{
		InterviewTime:     &when,
		InterviewLocation: "Zoom",
	})
	require.NoError(t, err)
	assert.Equal(t, pipeline.StagePatch{
		Status:            pipeline.StageInterviewScheduled,
		InterviewTime:     "2026-03-12T14:30:00Z",
		InterviewLocation: "Zoom",
	}, plan.Payload)

	// Missing location
	_, err = pipeline.ValidateTransition(pipeline.StageShortlisted, pipeline.StageInterviewScheduled, pipeline.TransitionData{
		InterviewTime: &when,
	})
	var missing *pipeline.MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "interview_location", missing.Field)

	// Missing time
	_, err = pipeline.ValidateTransition(pipeline.StageShortlisted, pipeline.StageInterviewScheduled, pipeline.TransitionData{
		InterviewLocation: "Zoom",
	})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "interview_time", missing.Field)
}

func TestValidateTransition_NonUTCTimeSerializedAsUTC(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	when := time.Date(2026, 3, 12, 21, 30, 0, 0, loc)

	plan, err := pipeline.ValidateTransition(pipeline.StageViewed, pipeline.StageInterviewScheduled, pipeline.TransitionData{
		InterviewTime:     &when,
		InterviewLocation: "HCMC office, room 4B",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-12T14:30:00Z", plan.Payload.InterviewTime)
}

// Identical inputs must yield identical results: the engine holds no hidden
// state.
func TestValidateTransition_Deterministic(t *testing.T) {
	when := time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC)
	data := pipeline.TransitionData{InterviewTime: &when, InterviewLocation: "Zoom"}

	first, err1 := pipeline.ValidateTransition(pipeline.StageShortlisted, pipeline.StageInterviewScheduled, data)
	second, err2 := pipeline.ValidateTransition(pipeline.StageShortlisted, pipeline.StageInterviewScheduled, data)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)

	_, errA := pipeline.ValidateTransition(pipeline.StageOffered, pipeline.StageShortlisted, pipeline.TransitionData{})
	_, errB := pipeline.ValidateTransition(pipeline.StageOffered, pipeline.StageShortlisted, pipeline.TransitionData{})
	require.Error(t, errA)
	assert.Equal(t, errA.Error(), errB.Error())
}

// Walk a full hire: Applied → (out-of-band Viewed) → Shortlisted →
// Interview_Scheduled → Hired. Every hop must validate and the final stage
// must be terminal.
func TestValidateTransition_FullHireWalk(t *testing.T) {
	when := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	// The application is created at Applied; the employer's first open marks
	// it Viewed out of band, and the walk resumes from there.
	current := pipeline.StageViewed

	steps := []struct {
		to   pipeline.Stage
		data pipeline.TransitionData
	}{
		{pipeline.StageShortlisted, pipeline.TransitionData{}},
		{pipeline.StageInterviewScheduled, pipeline.TransitionData{InterviewTime: &when, InterviewLocation: "Zoom"}},
		{pipeline.StageHired, pipeline.TransitionData{}},
	}

	for _, step := range steps {
		plan, err := pipeline.ValidateTransition(current, step.to, step.data)
		require.NoError(t, err, "%s → %s", current, step.to)
		current = plan.Target
	}

	assert.Equal(t, pipeline.StageHired, current)
	assert.True(t, pipeline.IsTerminal(current))
	assert.Empty(t, pipeline.AllowedTargets(current))
}

func TestTransitionErrors_AreValues(t *testing.T) {
	_, err := pipeline.ValidateTransition(pipeline.StageOffered, pipeline.StageApplied, pipeline.TransitionData{})
	require.Error(t, err)

	var illegal *pipeline.IllegalTransitionError
	var missing *pipeline.MissingDataError
	assert.True(t, errors.As(err, &illegal))
	assert.False(t, errors.As(err, &missing))
	assert.Contains(t, err.Error(), "not allowed")
}
