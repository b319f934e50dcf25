package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockSeconds(t *testing.T) {
	cases := map[string]int{
		"0:00":   0,
		"00:41":  41,
		"5:07":   307,
		"20:00":  1200,
		" 12:30": 750,
	}
	for in, want := range cases {
		got, err := ClockSeconds(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "12", "a:30", "1:xx", "1:75", "-1:00"} {
		_, err := ClockSeconds(bad)
		assert.Error(t, err, bad)
	}
}
