package handler

import (
	"net/http"
	"strconv"
	"strings"

	"calendars/internal/calendar"
	"calendars/internal/logger"
	"calendars/internal/paging"

	"github.com/go-chi/chi/v5"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type CalendarHandler struct {
	Svc *calendar.Service
	Log *logger.Logger
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer drainBody(r)

	var req calendarReq
	if err := decodeBody(r, &req); err != nil {
		h.Log.Warn("Calendar body rejected", "error", err)
		writeDecodeError(w, err)
		return
	}
	cal, fe := req.toCalendar()
	if fe != nil {
		WriteProblem(w, http.StatusBadRequest, "validation failed", "one or more fields are invalid", fe)
		return
	}

	out, err := h.Svc.Create(r.Context(), cal)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}

	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+out.ID)
	writeJSON(w, http.StatusCreated, toCalendarResp(*out))
}

// List returns every calendar, or one page of them when page or size is
// given. size is clamped to [1, 100] and page to >= 0.
func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("page") && !q.Has("size") {
		all, err := h.Svc.List(r.Context())
		if err != nil {
			writeServiceError(w, r, h.Log, err)
			return
		}
		out := make([]calendarResp, 0, len(all))
		for _, c := range all {
			out = append(out, toCalendarResp(c))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	page, err := intParam(q.Get("page"), 0)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "invalid parameters", "page must be an integer", nil)
		return
	}
	size, err := intParam(q.Get("size"), defaultPageSize)
	if err != nil {
		WriteProblem(w, http.StatusBadRequest, "invalid parameters", "size must be an integer", nil)
		return
	}
	page = max(page, 0)
	size = min(max(size, 1), maxPageSize)

	p, err := h.Svc.ListPage(r.Context(), page, size)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, paging.Map(p, toCalendarResp))
}

func (h *CalendarHandler) Get(w http.ResponseWriter, r *http.Request) {
	cal, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarResp(*cal))
}

// Replace overwrites an existing calendar and its events. The path id wins
// over any id in the body.
func (h *CalendarHandler) Replace(w http.ResponseWriter, r *http.Request) {
	defer drainBody(r)

	var req calendarReq
	if err := decodeBody(r, &req); err != nil {
		h.Log.Warn("Calendar body rejected", "error", err)
		writeDecodeError(w, err)
		return
	}
	req.ID = ""
	cal, fe := req.toCalendar()
	if fe != nil {
		WriteProblem(w, http.StatusBadRequest, "validation failed", "one or more fields are invalid", fe)
		return
	}

	out, err := h.Svc.Update(r.Context(), chi.URLParam(r, "id"), cal)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarResp(*out))
}

// Delete answers 204 whether or not the calendar existed.
func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CalendarHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteAll(r.Context()); err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func intParam(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
