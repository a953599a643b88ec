package ports

import (
	"context"

	"github.com/rbroggi/studyhub/internal/core/model"
)

// MailSender is the port for handing outbound mails to the mail queue. Sending is
// fire-and-forget from the workflow's perspective: a failure surfaces as
// model.ErrNotificationFailed and never rolls back the state mutation that triggered it.
type MailSender interface {
	// Send enqueues a mail message for asynchronous delivery.
	Send(ctx context.Context, msg model.MailMessage) error
}
