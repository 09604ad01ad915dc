package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLevelForVerbosity(t *testing.T) {
	require.Equal(t, zerolog.WarnLevel, LevelForVerbosity(-1))
	require.Equal(t, zerolog.WarnLevel, LevelForVerbosity(0))
	require.Equal(t, zerolog.InfoLevel, LevelForVerbosity(1))
	require.Equal(t, zerolog.DebugLevel, LevelForVerbosity(2))
	require.Equal(t, zerolog.DebugLevel, LevelForVerbosity(5))
}

func TestNewFiltersByVerbosity(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, 1, false)

	log.Debug().Msg("hidden")
	log.Info().Int("course_id", 22841).Msg("now processing")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "now processing", entry["message"])
	require.EqualValues(t, 22841, entry["course_id"])
	require.Contains(t, entry, "time")
}

func TestNewQuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, 0, false)

	log.Info().Msg("progress")
	require.Empty(t, buf.String())

	log.Warn().Msg("careful")
	require.Contains(t, buf.String(), "careful")
}

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, 2, true)

	log.Debug().Str("path", "data/courses.json").Msg("writing")
	require.Contains(t, buf.String(), "writing")
	require.Contains(t, buf.String(), "data/courses.json")
	require.False(t, json.Valid(buf.Bytes()))
}
