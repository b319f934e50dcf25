package repository

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/backfill"
	"github.com/fortuna/rinkside/internal/store"
)

const (
	eventsTable = "pbp_events"
	shiftsTable = "shifts"
)

// SeasonRepository keeps one copy of each season's tables in PostgreSQL.
// A checkpoint deletes the season's rows and bulk-loads the snapshot in the
// same transaction, so readers see either the old or the new checkpoint.
type SeasonRepository struct {
	db     *store.Database
	logger *zap.Logger
}

// NewSeasonRepository creates a new season repository.
func NewSeasonRepository(db *store.Database, logger *zap.Logger) *SeasonRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeasonRepository{db: db, logger: logger.Named("store.season")}
}

// Checkpoint implements backfill.Sink.
func (r *SeasonRepository) Checkpoint(ctx context.Context, snap backfill.Snapshot) error {
	tx, err := r.db.DB().BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin season checkpoint")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+eventsTable+` WHERE season = $1`, snap.Label); err != nil {
		return errors.Wrapf(err, "clear events for %s", snap.Label)
	}
	if err := copyRows(ctx, tx, eventsTable, eventColumns(), len(snap.Events), func(i int) []any {
		return eventArgs(snap.Label, snap.Events[i])
	}); err != nil {
		return errors.Wrapf(err, "copy events for %s", snap.Label)
	}

	if snap.IncludeShifts {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+shiftsTable+` WHERE season = $1`, snap.Label); err != nil {
			return errors.Wrapf(err, "clear shifts for %s", snap.Label)
		}
		if err := copyRows(ctx, tx, shiftsTable, shiftColumns(), len(snap.Shifts), func(i int) []any {
			return shiftArgs(snap.Label, snap.Shifts[i])
		}); err != nil {
			return errors.Wrapf(err, "copy shifts for %s", snap.Label)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit season checkpoint")
	}

	stored, err := r.CountEvents(ctx, snap.Label)
	if err != nil {
		return err
	}
	if stored != len(snap.Events) {
		return errors.Newf("season %s: stored %d events, snapshot has %d", snap.Label, stored, len(snap.Events))
	}

	r.logger.Debug("season replaced",
		zap.String("season", snap.Label),
		zap.Int("events", stored),
		zap.Int("shifts", len(snap.Shifts)))
	return nil
}

// CountEvents returns the number of stored event rows for a season.
func (r *SeasonRepository) CountEvents(ctx context.Context, label string) (int, error) {
	var n int
	err := r.db.DB().GetContext(ctx, &n, `SELECT COUNT(*) FROM `+eventsTable+` WHERE season = $1`, label)
	if err != nil {
		return 0, errors.Wrapf(err, "count events for %s", label)
	}
	return n, nil
}

func copyRows(ctx context.Context, tx *sqlx.Tx, table string, columns []string, n int, row func(int) []any) error {
	stmt, err := tx.PreparexContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	// An argument-less Exec flushes the COPY buffer.
	_, err = stmt.ExecContext(ctx)
	return err
}

func eventColumns() []string {
	return dbColumns(store.EventColumns)
}

func shiftColumns() []string {
	return dbColumns(store.ShiftColumns)
}

func dbColumns(names []string) []string {
	cols := make([]string, 0, len(names)+1)
	cols = append(cols, "season")
	for _, n := range names {
		cols = append(cols, strings.ToLower(n))
	}
	return cols
}

func eventArgs(label string, ev store.Event) []any {
	rec := ev.Record()
	args := make([]any, 0, len(rec)+1)
	args = append(args, label)
	for _, v := range rec {
		args = append(args, v)
	}
	// Missing coordinates are NULL, not empty strings.
	xc, yc := len(args)-4, len(args)-3
	if !ev.XC.Valid {
		args[xc] = nil
	}
	if !ev.YC.Valid {
		args[yc] = nil
	}
	return args
}

func shiftArgs(label string, s store.Shift) []any {
	rec := s.Record()
	args := make([]any, 0, len(rec)+1)
	args = append(args, label)
	for _, v := range rec {
		args = append(args, v)
	}
	return args
}
