package units

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	require.Equal(t, int64(64<<20), MB(64))
	for n, want := range map[int64]string{
		0:          "0b",
		1023:       "1023b",
		Kb:         "1.0Kb",
		3 * Mb / 2: "1.5Mb",
		MB(64):     "64.0Mb",
		5 * Gb:     "5.0Gb",
		Gb + Gb/2:  "1.5Gb",
	} {
		require.Equal(t, want, Format(n), "%d", n)
	}
}
