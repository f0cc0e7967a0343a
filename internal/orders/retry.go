package orders

import (
	"context"
	"fmt"

	pkgdb "github.com/developersvyapar-netizen/vyaapar-backend/pkg/db"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/metrics"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// NumberAllocator produces candidate order numbers.
type NumberAllocator interface {
	Next(ctx context.Context) (string, error)
}

// CommitWithRetry runs commit inside a transaction with a freshly derived
// order number. When the order_number unique constraint rejects the insert,
// the transaction is abandoned and the whole step re-runs with a new
// candidate, up to maxAttempts. Any other failure aborts immediately with no
// partial effects.
func CommitWithRetry(
	ctx context.Context,
	runner txRunner,
	alloc NumberAllocator,
	maxAttempts int,
	checkoutMetrics *metrics.CheckoutMetrics,
	commit func(tx *gorm.DB, orderNumber string) error,
) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		number, err := alloc.Next(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}

		err = runner.WithTx(ctx, func(tx *gorm.DB) error {
			return commit(tx, number)
		})
		if err == nil {
			return nil
		}
		if !pkgdb.IsUniqueViolation(err, "order_number") {
			return err
		}

		checkoutMetrics.IncCollision()
		lastErr = err
	}

	checkoutMetrics.IncExhausted()
	return pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr,
		fmt.Sprintf("order number allocation exhausted after %d attempts", maxAttempts))
}
