// internal/services/application_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/DDP16/se-jobs-pipeline/internal/models"
	"github.com/DDP16/se-jobs-pipeline/internal/notify"
	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
	"github.com/DDP16/se-jobs-pipeline/internal/store"
	"github.com/DDP16/se-jobs-pipeline/internal/utils"
)

// ErrConfirmationRequired is returned when a transition to Hired or
// Rejected is attempted without explicit operator confirmation.
var ErrConfirmationRequired = errors.New("transition requires explicit confirmation")

type ApplicationService struct {
	db         *gorm.DB
	stageStore pipeline.ApplicationStore
	notifier   notify.Notifier
}

type CreateApplicationRequest struct {
	JobID       uuid.UUID `json:"job_id" validate:"required"`
	CandidateID uuid.UUID `json:"candidate_id" validate:"required"`
}

type ChangeStageRequest struct {
	Target            string `json:"target" validate:"required,stage"`
	OfferedSalary     string `json:"offered_salary,omitempty" validate:"omitempty,offer_salary"`
	InterviewTime     string `json:"interview_time,omitempty"`
	InterviewLocation string `json:"interview_location,omitempty"`
	// Confirmed must be true for transitions to Hired or Rejected.
	Confirmed bool `json:"confirmed,omitempty"`
}

type ApplicationSearchParams struct {
	utils.PaginationParams
	Status      *string    `json:"status,omitempty"`
	JobID       *uuid.UUID `json:"job_id,omitempty"`
	CandidateID *uuid.UUID `json:"candidate_id,omitempty"`
}

// TargetOption describes one stage reachable from the current stage and
// what committing to it would take.
type TargetOption struct {
	Stage                pipeline.Stage `json:"stage"`
	Requires             string         `json:"requires"`
	RequiresConfirmation bool           `json:"requires_confirmation"`
}

type TransitionOptions struct {
	Current  pipeline.Stage `json:"current"`
	Terminal bool           `json:"terminal"`
	Targets  []TargetOption `json:"targets"`
}

func NewApplicationService(db *gorm.DB, stageStore pipeline.ApplicationStore, notifier notify.Notifier) *ApplicationService {
	return &ApplicationService{
		db:         db,
		stageStore: stageStore,
		notifier:   notifier,
	}
}

// CreateApplication registers a new submission at the Applied stage. A
// candidate may hold at most one live application per job.
func (s *ApplicationService) CreateApplication(ctx context.Context, req *CreateApplicationRequest) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.Application
	err := s.db.WithContext(ctx).
		Where("job_id = ? AND candidate_id = ?", req.JobID, req.CandidateID).
		First(&existing).Error
	if err == nil {
		return nil, errors.New("candidate has already applied to this job")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	app := &models.Application{
		JobID:       req.JobID,
		CandidateID: req.CandidateID,
		Status:      string(pipeline.StageApplied),
	}
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

// GetApplication returns a single application by ID.
func (s *ApplicationService) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := s.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &app, nil
}

// ListApplications returns applications matching the search parameters,
// newest first by default.
func (s *ApplicationService) ListApplications(ctx context.Context, params ApplicationSearchParams) (*utils.PaginationResult, error) {
	query := s.db.WithContext(ctx).Model(&models.Application{})

	if params.Status != nil {
		if _, err := pipeline.ParseStage(*params.Status); err != nil {
			return nil, err
		}
		query = query.Where("status = ?", *params.Status)
	}
	if params.JobID != nil {
		query = query.Where("job_id = ?", *params.JobID)
	}
	if params.CandidateID != nil {
		query = query.Where("candidate_id = ?", *params.CandidateID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	var apps []models.Application
	if err := query.Scopes(utils.Paginate(params.PaginationParams)).Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	return utils.NewPaginationResult(params.PaginationParams, total, apps), nil
}

// MarkViewed records that an employer opened an application for the first
// time. Viewed is never a transition target, so this bypasses the stage
// graph; it only ever moves Applied → Viewed and is a no-op for any other
// current stage.
func (s *ApplicationService) MarkViewed(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != string(pipeline.StageApplied) {
		return app, nil
	}

	result := s.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ? AND status = ?", id, pipeline.StageApplied).
		Update("status", string(pipeline.StageViewed))
	if result.Error != nil {
		return nil, fmt.Errorf("mark viewed: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		app.Status = string(pipeline.StageViewed)
		s.recordStageEvent(ctx, id, string(pipeline.StageApplied), string(pipeline.StageViewed), nil)
	}
	return app, nil
}

// AllowedTargets returns the stages the application can move to from its
// current stage, with the data requirements for each.
func (s *ApplicationService) AllowedTargets(ctx context.Context, id uuid.UUID) (*TransitionOptions, error) {
	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	current, err := pipeline.ParseStage(app.Status)
	if err != nil {
		return nil, fmt.Errorf("stored stage is corrupt: %w", err)
	}

	targets := pipeline.AllowedTargets(current)
	options := make([]TargetOption, 0, len(targets))
	for _, t := range targets {
		options = append(options, TargetOption{
			Stage:                t,
			Requires:             pipeline.Requirement(t).String(),
			RequiresConfirmation: t == pipeline.StageHired || t == pipeline.StageRejected,
		})
	}

	return &TransitionOptions{
		Current:  current,
		Terminal: pipeline.IsTerminal(current),
		Targets:  options,
	}, nil
}

// ChangeStage moves an application to a new pipeline stage. The current
// stage is re-read from the database immediately before validation, the
// engine validates the transition, and exactly one write goes to the
// configured stage store. No retry on failure; the outcome is fanned out
// through the notifier either way.
func (s *ApplicationService) ChangeStage(ctx context.Context, id uuid.UUID, req *ChangeStageRequest) (*models.Application, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	target, err := pipeline.ParseStage(req.Target)
	if err != nil {
		return nil, err
	}

	app, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := pipeline.ParseStage(app.Status)
	if err != nil {
		return nil, fmt.Errorf("stored stage is corrupt: %w", err)
	}

	data := pipeline.TransitionData{
		OfferedSalary:     req.OfferedSalary,
		InterviewLocation: req.InterviewLocation,
	}
	if req.InterviewTime != "" {
		t, err := parseInterviewTime(req.InterviewTime)
		if err != nil {
			return nil, err
		}
		data.InterviewTime = &t
	}

	plan, err := pipeline.ValidateTransition(current, target, data)
	if err != nil {
		return nil, err
	}
	if plan.RequiresConfirmation && !req.Confirmed {
		return nil, ErrConfirmationRequired
	}

	updated, err := pipeline.Commit(ctx, s.stageStore, id, plan)
	if err != nil {
		s.notifier.Notify(ctx, notify.Event{
			ApplicationID: id.String(),
			From:          string(current),
			To:            string(target),
			Success:       false,
			Message:       err.Error(),
		})
		return nil, err
	}

	s.recordStageEvent(ctx, id, string(current), string(target), &plan.Payload)
	s.notifier.Notify(ctx, notify.Event{
		ApplicationID: id.String(),
		From:          string(current),
		To:            string(target),
		Success:       true,
		Message:       fmt.Sprintf("application moved from %s to %s", current, target),
	})

	return updated, nil
}

// GetHistory returns the stage event log for an application, oldest first.
func (s *ApplicationService) GetHistory(ctx context.Context, id uuid.UUID) ([]models.StageEvent, error) {
	if _, err := s.GetApplication(ctx, id); err != nil {
		return nil, err
	}

	var events []models.StageEvent
	if err := s.db.WithContext(ctx).
		Where("application_id = ?", id).
		Order("created_at asc").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("load stage events: %w", err)
	}
	return events, nil
}

func parseInterviewTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("interview_time must be an RFC 3339 timestamp: %w", err)
	}
	return t, nil
}

// recordStageEvent appends to the history log. Failures are logged and
// swallowed: the transition itself already committed.
func (s *ApplicationService) recordStageEvent(ctx context.Context, id uuid.UUID, from, to string, patch *pipeline.StagePatch) {
	event := &models.StageEvent{
		ApplicationID: id,
		FromStage:     from,
		ToStage:       to,
	}
	if patch != nil {
		event.Patch = models.JSONB{"status": string(patch.Status)}
		if patch.OfferedSalary != "" {
			event.Patch["offered_salary"] = patch.OfferedSalary
		}
		if patch.InterviewTime != "" {
			event.Patch["interview_time"] = patch.InterviewTime
		}
		if patch.InterviewLocation != "" {
			event.Patch["interview_location"] = patch.InterviewLocation
		}
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		logrus.WithError(err).WithField("application_id", id).Warn("Failed to record stage event")
	}
}
