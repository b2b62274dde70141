package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
	"github.com/DDP16/se-jobs-pipeline/internal/services"
	"github.com/DDP16/se-jobs-pipeline/internal/store"
	"github.com/DDP16/se-jobs-pipeline/internal/utils"
)

func TestRespondApplicationError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        store.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "confirmation required",
			err:        services.ErrConfirmationRequired,
			wantStatus: http.StatusPreconditionRequired,
			wantCode:   "CONFIRMATION_REQUIRED",
		},
		{
			name:       "illegal transition",
			err:        &pipeline.IllegalTransitionError{From: pipeline.StageOffered, To: pipeline.StageApplied},
			wantStatus: http.StatusConflict,
			wantCode:   "ILLEGAL_TRANSITION",
		},
		{
			name:       "missing required data",
			err:        &pipeline.MissingDataError{Field: "offered_salary"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "MISSING_REQUIRED_DATA",
		},
		{
			name:       "commit failure",
			err:        &pipeline.CommitError{Err: errors.New("store unreachable")},
			wantStatus: http.StatusBadGateway,
			wantCode:   "COMMIT_FAILED",
		},
		{
			name:       "fallback",
			err:        errors.New("candidate has already applied to this job"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondApplicationError(c, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)

			var resp utils.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestRespondApplicationError_MissingFieldDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondApplicationError(c, &pipeline.MissingDataError{Field: "interview_location"})

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "interview_location", details["field"])
}
