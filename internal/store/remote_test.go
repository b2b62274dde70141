package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
	"github.com/DDP16/se-jobs-pipeline/internal/store"
)

func TestRemoteStore_UpdateStage(t *testing.T) {
	id := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/applications/"+id.String(), r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var patch map[string]string
		require.NoError(t, json.Unmarshal(body, &patch))
		assert.Equal(t, "Offered", patch["status"])
		assert.Equal(t, "5000 USD", patch["offered_salary"])
		_, hasTime := patch["interview_time"]
		assert.False(t, hasTime, "unset patch fields must be omitted from the body")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             id.String(),
			"status":         "Offered",
			"offered_salary": "5000 USD",
		})
	}))
	defer server.Close()

	s, err := store.NewRemoteStore(store.RemoteConfig{BaseURL: server.URL})
	require.NoError(t, err)

	app, err := s.UpdateStage(context.Background(), id, pipeline.StagePatch{
		Status:        pipeline.StageOffered,
		OfferedSalary: "5000 USD",
	})
	require.NoError(t, err)
	assert.Equal(t, id, app.ID)
	assert.Equal(t, "Offered", app.Status)
	assert.Equal(t, "5000 USD", app.OfferedSalary)
}

func TestRemoteStore_ServerErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"code":    "CONFLICT",
				"message": "application was updated concurrently",
			},
		})
	}))
	defer server.Close()

	s, err := store.NewRemoteStore(store.RemoteConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = s.UpdateStage(context.Background(), uuid.New(), pipeline.StagePatch{Status: pipeline.StageShortlisted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application was updated concurrently")
}

func TestRemoteStore_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	s, err := store.NewRemoteStore(store.RemoteConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = s.UpdateStage(context.Background(), uuid.New(), pipeline.StagePatch{Status: pipeline.StageShortlisted})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoteStore_Cancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	s, err := store.NewRemoteStore(store.RemoteConfig{BaseURL: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err = s.UpdateStage(ctx, uuid.New(), pipeline.StagePatch{Status: pipeline.StageShortlisted})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewRemoteStore_RequiresBaseURL(t *testing.T) {
	_, err := store.NewRemoteStore(store.RemoteConfig{})
	assert.Error(t, err)
}
