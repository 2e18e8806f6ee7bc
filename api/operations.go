package api

import (
	"io"
	"net/http"

	"github.com/kilianp07/ocppcs/core/chargepoint"
)

const maxBody = 1 << 20

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("operation")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := s.exec.Execute(r.Context(), name, body)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			s.log.Errorf("execute %s: %v", name, err)
		}
		writeError(w, code, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"task_id": id})
}

func (s *Server) handleOperations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, chargepoint.Operations())
}
