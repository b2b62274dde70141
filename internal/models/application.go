// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Application represents one candidate's submission to one job. Status is
// mutated only through validated pipeline transitions; the job and
// candidate references are immutable after creation.
type Application struct {
	BaseModel
	JobID       uuid.UUID `json:"job_id" gorm:"type:uuid;not null;index"`
	CandidateID uuid.UUID `json:"candidate_id" gorm:"type:uuid;not null;index"`
	Status      string    `json:"status" gorm:"type:varchar(30);default:'Applied';index"`

	// Set only when Status becomes Offered. Full offer string, amount plus
	// currency code, e.g. "5000 USD".
	OfferedSalary string `json:"offered_salary,omitempty" gorm:"type:varchar(50)"`

	// Set only when Status becomes Interview_Scheduled.
	InterviewTime     *time.Time `json:"interview_time,omitempty"`
	InterviewLocation string     `json:"interview_location,omitempty" gorm:"type:text"`

	StageEvents []StageEvent `json:"stage_events,omitempty" gorm:"foreignKey:ApplicationID"`
}

// StageEvent is one entry in an application's stage history: which
// transition happened and the exact patch that was persisted for it.
type StageEvent struct {
	BaseModel
	ApplicationID uuid.UUID `json:"application_id" gorm:"type:uuid;not null;index"`
	FromStage     string    `json:"from_stage" gorm:"type:varchar(30);not null"`
	ToStage       string    `json:"to_stage" gorm:"type:varchar(30);not null"`
	Patch         JSONB     `json:"patch,omitempty" gorm:"type:jsonb"`
}
