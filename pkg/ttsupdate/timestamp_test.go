package ttsupdate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "timestamp.json")
	now := time.Date(2024, 9, 1, 13, 0, 0, 0, time.FixedZone("WEST", 3600))

	ts, err := WriteTimestamp(path, now)
	require.NoError(t, err)
	require.Equal(t, int64(1725192000), ts.Timestamp)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"timestamp":1725192000}`, string(data))
}

func TestWriteTimestampOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timestamp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timestamp":1,"stale":true}`), 0644))

	_, err := WriteTimestamp(path, time.Unix(42, 0))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"timestamp":42}`, string(data))
}
