package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"calendars/internal/calendar"
	"calendars/internal/logger"
	"calendars/internal/metadata"
)

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type     string              `json:"type,omitempty"`
	Title    string              `json:"title,omitempty"`
	Status   int                 `json:"status,omitempty"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

func WriteProblem(w http.ResponseWriter, status int, title, detail string, errs map[string][]string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:  title,
		Status: status,
		Detail: detail,
		Errors: errs,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps domain errors onto problem responses. Anything
// unrecognized is logged and reported as 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, calendar.ErrNotFound), errors.Is(err, metadata.ErrNotFound):
		log.Warn("Resource not found", "path", r.URL.Path, "error", err)
		WriteProblem(w, http.StatusNotFound, "not found", err.Error(), nil)
	case errors.Is(err, calendar.ErrAlreadyExists), errors.Is(err, metadata.ErrAlreadyExists):
		log.Warn("Resource already exists", "path", r.URL.Path, "error", err)
		WriteProblem(w, http.StatusBadRequest, "already exists", err.Error(), nil)
	case errors.Is(err, calendar.ErrConflict):
		log.Warn("Duplicate key violation", "path", r.URL.Path, "error", err)
		WriteProblem(w, http.StatusConflict, "Duplicate Key Violation",
			"a calendar or event with the same identifier already exists", nil)
	default:
		log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteProblem(w, http.StatusInternalServerError, "server error", "", nil)
	}
}

// writeDecodeError reports a body that could not be read or parsed.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteProblem(w, http.StatusRequestEntityTooLarge, "request too large", err.Error(), nil)
		return
	}
	if errors.Is(err, errUnsupportedMediaType) {
		WriteProblem(w, http.StatusUnsupportedMediaType, "unsupported media type",
			"expected application/xml or application/json", nil)
		return
	}
	WriteProblem(w, http.StatusBadRequest, "invalid body", err.Error(), nil)
}

type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe fieldErrors) maxLen(field, value string, n int) {
	if len([]rune(value)) > n {
		fe.add(field, "must not exceed "+strconv.Itoa(n)+" characters")
	}
}
