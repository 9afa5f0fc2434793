package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/williamwmy/fantastic-task/internal/points"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

// writeEngineError maps the points package's sentinel errors onto HTTP
// statuses. Anything unrecognized is a 500 with a generic message.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, points.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, points.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, points.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, points.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
