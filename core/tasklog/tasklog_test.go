package tasklog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ocppcs/core/factory"
	"github.com/kilianp07/ocppcs/core/ocpp"
)

func sampleRecords(base time.Time) []Record {
	return []Record{
		{Timestamp: base, TaskID: 1, Operation: "Reset", Version: "1.5", ChargeBoxID: "CB1", State: "succeeded", Status: "Accepted"},
		{Timestamp: base.Add(time.Minute), TaskID: 1, Operation: "Reset", Version: "1.5", ChargeBoxID: "CB2", State: "faulted",
			Fault: &ocpp.Fault{Code: "Receiver", Reason: "busy"}},
		{Timestamp: base.Add(2 * time.Minute), TaskID: 2, Operation: "ClearCache", Version: "1.5", ChargeBoxID: "CB1", State: "transport_error", Error: "timeout"},
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	for _, r := range sampleRecords(base) {
		require.NoError(t, s.Append(ctx, r))
	}

	all, err := s.Query(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	cb1, err := s.Query(ctx, Query{ChargeBoxID: "CB1"})
	require.NoError(t, err)
	assert.Len(t, cb1, 2)

	op, err := s.Query(ctx, Query{Operation: "Reset", TaskID: 1})
	require.NoError(t, err)
	require.Len(t, op, 2)

	window, err := s.Query(ctx, Query{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "CB2", window[0].ChargeBoxID)
	require.NotNil(t, window[0].Fault)
	assert.Equal(t, "Receiver", window[0].Fault.Code)
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "log.jsonl"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestJSONLStore_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	s, err := NewJSONLStore(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not json\n"), 0o644))
	require.NoError(t, s.Append(context.Background(), Record{TaskID: 9}))
	out, err := s.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 9, out[0].TaskID)
}

func TestRotatingJSONLStore(t *testing.T) {
	s, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "logs", "log.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.jsonl")
	s, err := NewRotatingJSONLStore(path, 1, 3, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	payload := json.RawMessage(fmt.Sprintf(`{"data":%q}`, strings.Repeat("x", 2048)))
	for i := 0; i < 700; i++ {
		require.NoError(t, s.Append(context.Background(), Record{TaskID: i + 1, Response: payload}))
	}
	files, _ := filepath.Glob(filepath.Join(dir, "log*.jsonl"))
	assert.Greater(t, len(files), 1, "expected rotated files")

	out, err := s.Query(context.Background(), Query{TaskID: 700})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "log.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestRecord_JSONKeys(t *testing.T) {
	data, err := json.Marshal(Record{Timestamp: time.Unix(0, 0), TaskID: 1, ChargeBoxID: "CB1", State: "succeeded"})
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"timestamp", "task_id", "operation", "ocpp_version", "charge_box_id", "state", "latency_ms"} {
		assert.Contains(t, m, k)
	}
	assert.NotContains(t, m, "fault")
}

func TestNew_Backends(t *testing.T) {
	s, err := New(factory.ModuleConfig{})
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	dir := t.TempDir()
	s, err = New(factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": filepath.Join(dir, "x.db")}})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	_ = s.Close()

	s, err = New(factory.ModuleConfig{Type: "jsonl_rotating", Conf: map[string]any{"path": filepath.Join(dir, "r.jsonl"), "max_size_mb": "2"}})
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	_ = s.Close()

	_, err = New(factory.ModuleConfig{Type: "kafka"})
	assert.Error(t, err)
}
