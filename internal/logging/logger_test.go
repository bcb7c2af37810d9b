package logging

import (
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestNewWritesFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(Config{Dir: dir, Level: "debug"})
	require.NoError(t, err)

	audioLog := l.Component("audio")
	audioLog.Info().Int("bands", 5).Msg("capture started")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"component":"audio"`))
	assert.True(t, strings.Contains(string(data), "capture started"))
}

func TestLevelFilters(t *testing.T) {
	l, err := New(Config{Level: "warn"})
	require.NoError(t, err)

	hiddenLog := l.Component("x")
	hiddenLog.Info().Msg("hidden")
	shownLog := l.Component("x")
	shownLog.Warn().Msg("shown")

	hist := l.History(0)
	require.Len(t, hist, 1)
	assert.Equal(t, "shown", hist[0].Message)
	assert.Equal(t, zerolog.WarnLevel, hist[0].Level)
}

func TestHistoryBounded(t *testing.T) {
	l, err := New(Config{Level: "info", MaxHistory: 3})
	require.NoError(t, err)

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		zl := l.Zerolog()
		zl.Info().Msg(msg)
	}

	hist := l.History(0)
	require.Len(t, hist, 3)
	assert.Equal(t, "c", hist[0].Message)
	assert.Equal(t, "e", hist[2].Message)

	last := l.History(1)
	require.Len(t, last, 1)
	assert.Equal(t, "e", last[0].Message)
}

func TestNopLogger(t *testing.T) {
	l := Nop()
	nopLog := l.Component("x")
	nopLog.Error().Msg("dropped")
	assert.Empty(t, l.History(0))
	assert.NoError(t, l.Close())
}
