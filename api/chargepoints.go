package api

import (
	"net/http"
	"strconv"

	"github.com/kilianp07/ocppcs/core/cpstatus"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	f := cpstatus.Filter{
		ChargeBoxID: v.Get("charge_box_id"),
		Operation:   v.Get("operation"),
	}
	if raw := v.Get("only_unreachable"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		f.OnlyUnreachable = b
	}
	list := s.status.List(f)
	if list == nil {
		list = []cpstatus.Status{}
	}
	writeJSON(w, http.StatusOK, list)
}
