package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/core/tasklog"
)

func TestWriteCSV(t *testing.T) {
	ts := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	recs := []tasklog.Record{
		{Timestamp: ts, TaskID: 1, Operation: "Reset", Version: "1.5", ChargeBoxID: "cb1", State: "succeeded", Status: "Accepted", LatencyMS: 12.5},
		{Timestamp: ts, TaskID: 1, Operation: "Reset", Version: "1.5", ChargeBoxID: "cb2", State: "faulted", Fault: &ocpp.Fault{Code: "SecurityError"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, recs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "2024-03-01T08:00:00Z", rows[1][0])
	assert.Equal(t, "12.5", rows[1][9])
	assert.Equal(t, "SecurityError", rows[2][7])
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.JSONEq(t, `[]`, buf.String())
}
