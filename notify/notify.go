// Package notify holds the outbound-mail collaborator. Actual delivery is
// external; the default implementation only records the attempt.
package notify

import (
	"context"

	"github.com/Taycode/survey-app-api/log"
)

type Mailer interface {
	SendInvitation(ctx context.Context, email, surveyTitle, surveyURL string) error
}

// LogMailer stands in when no mail transport is configured.
type LogMailer struct{}

func (LogMailer) SendInvitation(_ context.Context, email, surveyTitle, surveyURL string) error {
	log.Infof("notify.invitation: to=%s survey=%q url=%s", email, surveyTitle, surveyURL)
	return nil
}
