package model

// MailMessage is an outbound email handed to the mail queue by the workflows and
// delivered asynchronously by the worker.
type MailMessage struct {
	// To is the recipient address.
	To string `json:"to"`

	// Subject is the mail subject line.
	Subject string `json:"subject"`

	// Body is the plain-text mail body.
	Body string `json:"body"`
}
