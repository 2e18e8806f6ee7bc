// Package export renders task log records for download.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/ocppcs/core/tasklog"
)

var csvHeader = []string{
	"timestamp", "task_id", "operation", "ocpp_version", "charge_box_id",
	"state", "status", "fault_code", "error", "latency_ms",
}

// WriteJSON writes records to w as a JSON array.
func WriteJSON(w io.Writer, records []tasklog.Record) error {
	if records == nil {
		records = []tasklog.Record{}
	}
	return json.NewEncoder(w).Encode(records)
}

// WriteCSV writes records to w, one row per record after a header row.
func WriteCSV(w io.Writer, records []tasklog.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		fault := ""
		if r.Fault != nil {
			fault = r.Fault.Code
		}
		row := []string{
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			strconv.Itoa(r.TaskID),
			r.Operation,
			r.Version,
			r.ChargeBoxID,
			r.State,
			r.Status,
			fault,
			r.Error,
			strconv.FormatFloat(r.LatencyMS, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
