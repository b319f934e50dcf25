// Package output writes season snapshots to durable storage.
package output

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/rinkside/internal/backfill"
	"github.com/fortuna/rinkside/internal/store"
)

const (
	eventsPrefix = "nhl_pbp"
	shiftsPrefix = "nhl_shifts"
)

// CSVSink rewrites one CSV file per table on every checkpoint. Each file is
// replaced atomically, so a crash mid-write leaves the previous checkpoint
// intact.
type CSVSink struct {
	dir    string
	logger *zap.Logger
}

// NewCSVSink creates a sink writing into dir.
func NewCSVSink(dir string, logger *zap.Logger) *CSVSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSink{dir: dir, logger: logger.Named("output.csv")}
}

// EventsPath is the play-by-play file for a season label.
func (s *CSVSink) EventsPath(label string) string {
	return filepath.Join(s.dir, eventsPrefix+label+".csv")
}

// ShiftsPath is the shift file for a season label.
func (s *CSVSink) ShiftsPath(label string) string {
	return filepath.Join(s.dir, shiftsPrefix+label+".csv")
}

// Checkpoint implements backfill.Sink.
func (s *CSVSink) Checkpoint(ctx context.Context, snap backfill.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.writeTable(s.EventsPath(snap.Label), func(w io.Writer) error {
		return EncodeEvents(w, snap.Events)
	})
	if err != nil {
		return errors.Wrapf(err, "write events for %s", snap.Label)
	}

	if snap.IncludeShifts {
		err = s.writeTable(s.ShiftsPath(snap.Label), func(w io.Writer) error {
			return EncodeShifts(w, snap.Shifts)
		})
		if err != nil {
			return errors.Wrapf(err, "write shifts for %s", snap.Label)
		}
	}

	s.logger.Debug("snapshot written",
		zap.String("label", snap.Label),
		zap.Int("events", len(snap.Events)),
		zap.Int("shifts", len(snap.Shifts)))
	return nil
}

// writeTable streams a table into a temp file in the target directory and
// renames it over dst.
func (s *CSVSink) writeTable(dst string, encode func(io.Writer) error) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := encode(tmp); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return err
	}

	_ = syncDir(dir)
	return nil
}

// EncodeEvents writes the play-by-play table, header first.
func EncodeEvents(w io.Writer, events []store.Event) error {
	return encodeTable(w, store.EventColumns, len(events), func(i int) []string {
		return events[i].Record()
	})
}

// EncodeShifts writes the shift table, header first.
func EncodeShifts(w io.Writer, shifts []store.Shift) error {
	return encodeTable(w, store.ShiftColumns, len(shifts), func(i int) []string {
		return shifts[i].Record()
	})
}

func encodeTable(w io.Writer, header []string, n int, row func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
