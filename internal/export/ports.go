// Package export defines the outbound ports for mirroring transactions
// to an external backend.
package export

import (
	"context"

	"finbook/internal/core"
)

type (
	// TransactionAppender mirrors a stored transaction to the export
	// backend, returning a backend-specific row reference.
	TransactionAppender interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// TransactionRemover removes a previously mirrored transaction.
	TransactionRemover interface {
		Remove(ctx context.Context, id int64) error
	}
)
