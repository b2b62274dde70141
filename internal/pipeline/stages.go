// Package pipeline defines the hiring-pipeline state machine for job
// applications.
//
// Valid stage graph:
//
//	Applied ──┬─► Shortlisted ──► Interview_Scheduled ──► Offered ──► Hired
//	Viewed  ──┘        ▲                   │                 │
//	    │              └───────────────────┤                 │
//	    └──────────────────────────────────┴─────────────────┴──► Rejected
//
// Hired, Rejected and Cancelled are terminal stages. Viewed is never a
// transition target: it is set out of band when an employer first opens an
// application. Cancelled is likewise only reachable externally (candidate
// withdraws).
package pipeline

import "fmt"

// Stage values mirror the application_status enum persisted by the backend.
type Stage string

const (
	StageApplied            Stage = "Applied"
	StageViewed             Stage = "Viewed"
	StageShortlisted        Stage = "Shortlisted"
	StageInterviewScheduled Stage = "Interview_Scheduled"
	StageOffered            Stage = "Offered"
	StageHired              Stage = "Hired"
	StageRejected           Stage = "Rejected"
	StageCancelled          Stage = "Cancelled"
)

// stageTransitions lists every allowed (from → to) pair.
var stageTransitions = map[Stage][]Stage{
	StageApplied:            {StageShortlisted, StageInterviewScheduled, StageOffered, StageHired, StageRejected},
	StageViewed:             {StageShortlisted, StageInterviewScheduled, StageOffered, StageHired, StageRejected},
	StageShortlisted:        {StageInterviewScheduled, StageOffered, StageHired, StageRejected},
	StageInterviewScheduled: {StageHired, StageRejected, StageShortlisted, StageOffered},
	StageOffered:            {StageHired, StageRejected},
	// Hired, Rejected and Cancelled are terminal — no outgoing transitions
}

// ParseStage converts a raw string to a Stage, returning an error for
// unknown values.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	switch st {
	case StageApplied, StageViewed, StageShortlisted, StageInterviewScheduled,
		StageOffered, StageHired, StageRejected, StageCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown application stage %q", s)
}

// AllowedTargets returns the stages reachable from the given stage. The
// result is empty for terminal stages. The returned slice is a copy and may
// be modified by the caller.
func AllowedTargets(from Stage) []Stage {
	targets, ok := stageTransitions[from]
	if !ok {
		return nil // terminal stage — no outgoing transitions
	}
	out := make([]Stage, len(targets))
	copy(out, targets)
	return out
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// stage graph.
func IsTransitionAllowed(from, to Stage) bool {
	for _, s := range stageTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for stages with no outgoing transitions.
func IsTerminal(s Stage) bool {
	_, ok := stageTransitions[s]
	return !ok
}

// RequirementKind names the auxiliary data a target stage demands before a
// transition to it may be committed.
type RequirementKind int

const (
	// RequireNone — the target stage needs no data beyond the stage itself.
	RequireNone RequirementKind = iota
	// RequireOfferDetails — the target stage needs an offered salary.
	RequireOfferDetails
	// RequireInterviewDetails — the target stage needs an interview time and
	// location.
	RequireInterviewDetails
)

func (k RequirementKind) String() string {
	switch k {
	case RequireOfferDetails:
		return "offer_details"
	case RequireInterviewDetails:
		return "interview_details"
	}
	return "none"
}

// Requirement reports what auxiliary data the target stage demands. It is a
// function of the target alone; the current stage is irrelevant.
func Requirement(target Stage) RequirementKind {
	switch target {
	case StageOffered:
		return RequireOfferDetails
	case StageInterviewScheduled:
		return RequireInterviewDetails
	}
	return RequireNone
}
