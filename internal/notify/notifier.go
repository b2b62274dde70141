// Package notify fans out the outcome of stage commits for user feedback.
// Notification failures are never fatal to the transition itself.
package notify

import "context"

// Event describes one resolved commit attempt.
type Event struct {
	ApplicationID string `json:"application_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
}

// Notifier delivers commit outcomes. Implementations must not block longer
// than the supplied context allows.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}
