package pipeline

import (
	"fmt"
	"time"
)

// TransitionData carries the auxiliary fields a caller supplies alongside a
// requested transition. All fields are optional; ValidateTransition decides
// which ones the target stage actually needs.
type TransitionData struct {
	// OfferedSalary is the full offer string, amount plus currency code,
	// e.g. "5000 USD".
	OfferedSalary string
	// InterviewTime is supplied by the caller; the engine never reads the
	// clock itself.
	InterviewTime     *time.Time
	InterviewLocation string
}

// StagePatch is the exact payload persisted for a transition. Only the
// fields the target stage requires are populated.
type StagePatch struct {
	Status            Stage  `json:"status"`
	OfferedSalary     string `json:"offered_salary,omitempty"`
	InterviewTime     string `json:"interview_time,omitempty"`
	InterviewLocation string `json:"interview_location,omitempty"`
}

// TransitionPlan is a validated, ready-to-persist transition.
type TransitionPlan struct {
	Target Stage
	// RequiresConfirmation is set for transitions to Hired or Rejected:
	// these are irreversible and affect the candidate materially, so the
	// caller must obtain explicit operator confirmation before committing.
	RequiresConfirmation bool
	Payload              StagePatch
}

// IllegalTransitionError reports a target stage not reachable from the
// current stage.
type IllegalTransitionError struct {
	From Stage
	To   Stage
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("transition %s → %s is not allowed", e.From, e.To)
}

// MissingDataError reports a transition attempted without a field its target
// stage requires.
type MissingDataError struct {
	Field string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("transition requires %s", e.Field)
}

// ValidateTransition checks that from → to is legal and that data carries
// everything the target stage requires, and produces the plan to persist.
// It is pure and deterministic: identical inputs always yield an identical
// plan or identical error.
func ValidateTransition(from, to Stage, data TransitionData) (*TransitionPlan, error) {
	if !IsTransitionAllowed(from, to) {
		return nil, &IllegalTransitionError{From: from, To: to}
	}

	plan := &TransitionPlan{
		Target:  to,
		Payload: StagePatch{Status: to},
	}

	switch Requirement(to) {
	case RequireOfferDetails:
		if data.OfferedSalary == "" {
			return nil, &MissingDataError{Field: "offered_salary"}
		}
		plan.Payload.OfferedSalary = data.OfferedSalary
	case RequireInterviewDetails:
		if data.InterviewTime == nil {
			return nil, &MissingDataError{Field: "interview_time"}
		}
		if data.InterviewLocation == "" {
			return nil, &MissingDataError{Field: "interview_location"}
		}
		plan.Payload.InterviewTime = data.InterviewTime.UTC().Format(time.RFC3339)
		plan.Payload.InterviewLocation = data.InterviewLocation
	}

	if to == StageHired || to == StageRejected {
		plan.RequiresConfirmation = true
	}

	return plan, nil
}
