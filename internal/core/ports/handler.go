package ports

import (
	"context"

	"github.com/rbroggi/studyhub/internal/core/model"
)

// MailHandler handles mail messages consumed from the mail queue on the worker side.
type MailHandler interface {
	// Handle delivers an incoming mail message.
	Handle(ctx context.Context, msg model.MailMessage) error
}
