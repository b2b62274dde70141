package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DDP16/se-jobs-pipeline/internal/models"
	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
)

// RemoteStore persists stage patches to a separate applications backend via
// PUT /applications/{id}. One round trip per commit, cancellable through
// the request context; no retries.
type RemoteStore struct {
	baseURL string
	client  *http.Client
}

// RemoteConfig captures runtime configuration for the remote store.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client // optional, overrides Timeout when set
}

func NewRemoteStore(cfg RemoteConfig) (*RemoteStore, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("remote store base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &RemoteStore{baseURL: base, client: hc}, nil
}

// remoteError mirrors the backend's error envelope.
type remoteError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *RemoteStore) UpdateStage(ctx context.Context, applicationID uuid.UUID, patch pipeline.StagePatch) (*models.Application, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode stage patch: %w", err)
	}

	url := fmt.Sprintf("%s/applications/%s", s.baseURL, applicationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store rejected transition: %s", readRemoteMessage(resp))
	}

	var app models.Application
	if err := json.NewDecoder(resp.Body).Decode(&app); err != nil {
		return nil, fmt.Errorf("decode application: %w", err)
	}
	return &app, nil
}

// readRemoteMessage extracts the server's error message, falling back to the
// raw body and then the HTTP status.
func readRemoteMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return resp.Status
	}

	var envelope remoteError
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
