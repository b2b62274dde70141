// Package store provides the persistence bindings for stage transitions:
// the local postgres database (default) and a remote applications backend
// reached over HTTP. Both satisfy pipeline.ApplicationStore and apply a
// stage patch as a single atomic write.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DDP16/se-jobs-pipeline/internal/models"
	"github.com/DDP16/se-jobs-pipeline/internal/pipeline"
)

// ErrNotFound is returned when an application does not exist.
var ErrNotFound = errors.New("application not found")

// GormStore persists stage patches to the local postgres database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// UpdateStage applies the patch in one UPDATE and returns the re-read
// record. Fields absent from the patch are left untouched.
func (s *GormStore) UpdateStage(ctx context.Context, applicationID uuid.UUID, patch pipeline.StagePatch) (*models.Application, error) {
	updates := map[string]interface{}{
		"status": string(patch.Status),
	}
	if patch.OfferedSalary != "" {
		updates["offered_salary"] = patch.OfferedSalary
	}
	if patch.InterviewTime != "" {
		t, err := time.Parse(time.RFC3339, patch.InterviewTime)
		if err != nil {
			return nil, fmt.Errorf("invalid interview_time %q: %w", patch.InterviewTime, err)
		}
		updates["interview_time"] = t
	}
	if patch.InterviewLocation != "" {
		updates["interview_location"] = patch.InterviewLocation
	}

	result := s.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", applicationID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update application stage: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var app models.Application
	if err := s.db.WithContext(ctx).First(&app, "id = ?", applicationID).Error; err != nil {
		return nil, fmt.Errorf("reload application: %w", err)
	}
	return &app, nil
}
