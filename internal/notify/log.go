package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes commit outcomes to the structured log. Used when redis
// is not configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Notify(_ context.Context, event Event) {
	logrus.WithFields(logrus.Fields{
		"application_id": event.ApplicationID,
		"from":           event.From,
		"to":             event.To,
		"success":        event.Success,
	}).Info(event.Message)
}
