package usecase

import (
	"context"
	"fmt"

	"github.com/rbroggi/studyhub/internal/core/model"
	"github.com/rbroggi/studyhub/internal/core/ports"
)

// NewNotifier builds a new notifier.
func NewNotifier(sender ports.MailSender) *Notifier {
	return &Notifier{sender: sender}
}

// Notifier fans study lifecycle changes out to the involved accounts that opted into
// mail notifications. Delivery is best-effort: failures are reported, never retried
// here, and never roll back the change that triggered them.
type Notifier struct {
	sender ports.MailSender
}

// StudyUpdated mails every manager and member with the study-updated mail flag set.
func (n *Notifier) StudyUpdated(ctx context.Context, study *model.Study, message string) error {
	var firstErr error
	for _, account := range append(study.Managers, study.Members...) {
		if !account.StudyUpdatedByEmail {
			continue
		}
		msg := model.MailMessage{
			To:      account.Email,
			Subject: fmt.Sprintf("studyhub, update on %q", study.Title),
			Body:    fmt.Sprintf("Hello %s,\n\n%s\n", account.Nickname, message),
		}
		if err := n.sender.Send(ctx, msg); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: %v", model.ErrNotificationFailed, err)
		}
	}
	return firstErr
}
