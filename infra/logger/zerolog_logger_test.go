package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Infow("info", map[string]any{"task_id": 1})
	l.Warnf("warn")
	l.Errorf("error")
	l.Errorw("error", nil)
}

func TestZerologLoggerComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("dispatch", &buf, "warn")
	l.Infof("hidden")
	l.Warnf("shown %d", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "dispatch", rec["component"])
	assert.Equal(t, "shown 2", rec["message"])
	assert.Equal(t, "warn", rec["level"])
}

func TestZerologLoggerStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("api", &buf, "debug")
	l.Debugw("tracker completed", map[string]any{"charge_box_id": "CB1"})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "CB1", rec["charge_box_id"])
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l.Errorf("nothing %s", "here")
}
