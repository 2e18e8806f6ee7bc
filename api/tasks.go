package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/ocppcs/core/tasklog"
	"github.com/kilianp07/ocppcs/pkg/export"
)

func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.tasks.List())
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid task id %q", r.PathValue("id")))
		return
	}
	t, ok := s.tasks.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("task %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, t.Snapshot())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := tasklog.Query{
		ChargeBoxID: v.Get("charge_box_id"),
		Operation:   v.Get("operation"),
	}
	if raw := v.Get("task_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid task_id %q", raw))
			return
		}
		q.TaskID = id
	}
	var err error
	if q.Start, err = parseTime(v.Get("start")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if q.End, err = parseTime(v.Get("end")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, err := s.logs.Query(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if v.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="task-log.csv"`)
		if err := export.WriteCSV(w, records); err != nil {
			s.log.Errorf("write csv: %v", err)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteJSON(w, records); err != nil {
		s.log.Errorf("write json: %v", err)
	}
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}
