package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Header is the first row of a mirror sheet.
var Header = []string{"ID", "Date", "Type", "Category", "Description", "Amount"}

// Ports for outbound adapters.
type (
	// TransactionMirror keeps a flat copy of the ledger outside the database.
	// Both operations are idempotent.
	TransactionMirror interface {
		Upsert(ctx context.Context, v core.TransactionView) error
		Remove(ctx context.Context, id string) error
	}
)
