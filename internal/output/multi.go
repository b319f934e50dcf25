package output

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/rinkside/internal/backfill"
)

// Multi hands each snapshot to every sink. All sinks are tried; their
// errors are combined.
type Multi []backfill.Sink

// Checkpoint implements backfill.Sink.
func (m Multi) Checkpoint(ctx context.Context, snap backfill.Snapshot) error {
	var errs error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		errs = errors.CombineErrors(errs, sink.Checkpoint(ctx, snap))
	}
	return errs
}
