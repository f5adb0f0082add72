// Package connectors pulls ERP extracts out of a mailbox.
package connectors

import (
	"context"

	"gerencial/internal"
)

// MailConnector lists recent messages of one mailbox label with their raw bytes.
type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error)
}
