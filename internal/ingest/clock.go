package ingest

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ClockSeconds converts a "m:ss" or "mm:ss" period clock to seconds.
func ClockSeconds(clock string) (int, error) {
	clock = strings.TrimSpace(clock)
	mins, secs, ok := strings.Cut(clock, ":")
	if !ok {
		return 0, errors.Newf("malformed clock %q", clock)
	}
	m, err := strconv.Atoi(strings.TrimSpace(mins))
	if err != nil {
		return 0, errors.Wrapf(err, "malformed clock %q", clock)
	}
	s, err := strconv.Atoi(strings.TrimSpace(secs))
	if err != nil {
		return 0, errors.Wrapf(err, "malformed clock %q", clock)
	}
	if m < 0 || s < 0 || s > 59 {
		return 0, errors.Newf("malformed clock %q", clock)
	}
	return m*60 + s, nil
}
