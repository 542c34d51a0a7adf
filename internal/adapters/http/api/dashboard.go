package api

import (
	"errors"
	"net/http"

	"github.com/okian/salestrack/internal/domain/window"
)

// DashboardHandler serves the rendered dashboard figures.
type DashboardHandler struct {
	deps Dependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps Dependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

// HandleGetDashboard handles GET /api/dashboard requests. A filter query
// (filter, from, to) computes a one-off view without changing the active
// filter.
func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("filter") {
		writeJSON(w, http.StatusOK, h.deps.Dashboard(r.Context()))
		return
	}
	f, err := window.ParseFilter(q.Get("filter"), q.Get("from"), q.Get("to"))
	if err != nil {
		writeFilterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.DashboardFor(r.Context(), f))
}

// FilterHandler reads and changes the active time filter.
type FilterHandler struct {
	deps Dependencies
}

// NewFilterHandler creates a new filter handler.
func NewFilterHandler(deps Dependencies) *FilterHandler {
	return &FilterHandler{deps: deps}
}

type filterRequest struct {
	Selector string `json:"selector"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

// HandleGet handles GET /api/filter requests.
func (h *FilterHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Filter(r.Context()))
}

// HandlePut handles PUT /api/filter requests. A rejected filter leaves the
// previous one active.
func (h *FilterHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	f, err := window.ParseFilter(req.Selector, req.Start, req.End)
	if err != nil {
		writeFilterError(w, err)
		return
	}
	if err := h.deps.SetTimeFilter(r.Context(), f); err != nil {
		writeFilterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Filter(r.Context()))
}

func writeFilterError(w http.ResponseWriter, err error) {
	code := "bad_request"
	switch {
	case errors.Is(err, window.ErrIncompleteRange):
		code = "incomplete_range"
	case errors.Is(err, window.ErrUnknownSelector):
		code = "unknown_selector"
	case errors.Is(err, window.ErrInvalidDate):
		code = "invalid_date"
	}
	writeError(w, http.StatusBadRequest, code, err)
}
