package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		_ = SetLevel("info")
	})
	return &buf
}

func TestEntryShape(t *testing.T) {
	buf := capture(t)
	New("floor-service").With(map[string]any{"station": "bar"}).
		Error("commit_failed", errors.New("broker down"), map[string]any{"table_id": 4})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "floor-service", entry["service"])
	assert.Equal(t, "commit_failed", entry["action"])
	assert.Equal(t, "commit_failed", entry["message"])
	assert.Equal(t, "broker down", entry["error"])
	assert.Equal(t, "bar", entry["station"])
	assert.EqualValues(t, 4, entry["table_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestLevelFilter(t *testing.T) {
	buf := capture(t)
	l := New("x")
	l.Debug("hidden", nil)
	assert.Zero(t, buf.Len())

	require.NoError(t, SetLevel("debug"))
	l.Debug("shown", nil)
	assert.Contains(t, buf.String(), `"shown"`)

	assert.Error(t, SetLevel("loud"))
}
