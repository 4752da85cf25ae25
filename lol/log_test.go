package lol

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	prev := Level.Load()
	t.Cleanup(func() {
		SetWriter(os.Stderr)
		Level.Store(prev)
	})
	SetLogLevel("WARN")
	require.Equal(t, int32(Warn), Level.Load())
	Main.Log.I.F("hidden %d", 1)
	Main.Log.W.F("shown %d", 2)
	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown 2")

	buf.Reset()
	require.False(t, Main.Check.E(nil))
	require.True(t, Main.Check.D(errors.New("quiet")))
	require.True(t, Main.Check.E(errors.New("loud")))
	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "loud")

	err := Main.Errorf.E("bad %s", "key")
	require.EqualError(t, err, "bad key")
	require.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestGetLogLevel(t *testing.T) {
	require.Equal(t, Trace, GetLogLevel(" Trace "))
	require.Equal(t, Off, GetLogLevel("off"))
	require.Equal(t, Info, GetLogLevel("verbose"))
}
