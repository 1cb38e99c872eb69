// Package mailer renders and delivers transactional email for account
// lifecycle events. Delivery failures are reported to the caller but are
// never propagated to the request that triggered the mail.
package mailer

import "context"

// Message is a rendered email ready for delivery.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers rendered messages.
type Mailer interface {
	Deliver(ctx context.Context, msg Message) error
}
