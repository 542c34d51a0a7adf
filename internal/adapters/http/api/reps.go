package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/salestrack/internal/app"
	"github.com/okian/salestrack/pkg/logger"
)

// IdempotencyKeyHeader lets clients retry a deal submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// RepsHandler handles representative and deal requests.
type RepsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewRepsHandler creates a new representatives handler.
func NewRepsHandler(deps Dependencies, l logger.Logger) *RepsHandler {
	return &RepsHandler{deps: deps, logger: l}
}

type addRepRequest struct {
	Name string `json:"name"`
}

// dealRequest accepts the amount as a JSON number or as text.
type dealRequest struct {
	Amount json.RawMessage `json:"amount"`
}

func (d dealRequest) amount() float64 {
	raw := strings.TrimSpace(string(d.Amount))
	if raw == "" || raw == "null" {
		return 0
	}
	var text string
	if err := json.Unmarshal(d.Amount, &text); err == nil {
		return app.CoerceAmount(text)
	}
	return app.CoerceAmount(raw)
}

// HandleList handles GET /api/reps requests.
func (h *RepsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Representatives(r.Context()))
}

// HandleAdd handles POST /api/reps requests.
func (h *RepsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRepRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	rep, out, err := h.deps.AddRepresentative(r.Context(), req.Name)
	switch {
	case errors.Is(err, app.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "empty_name", err)
		return
	case errors.Is(err, app.ErrDuplicateName):
		writeError(w, http.StatusConflict, "duplicate_name", err)
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}
	resp := newMutationResponse(out)
	resp.Rep = &rep
	writeJSON(w, http.StatusCreated, resp)
}

// HandleRemove handles DELETE /api/reps/{id}?confirm=true requests.
func (h *RepsHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := repID(w, r)
	if !ok {
		return
	}
	if confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !confirmed {
		writeError(w, http.StatusPreconditionRequired, "confirmation_required", ErrConfirmationRequired)
		return
	}
	out, err := h.deps.RemoveRepresentative(r.Context(), id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMutationResponse(out))
}

// HandleRecordDeal handles POST /api/reps/{id}/deals requests. An unknown
// id is a no-op reported with changed=false.
func (h *RepsHandler) HandleRecordDeal(w http.ResponseWriter, r *http.Request) {
	id, ok := repID(w, r)
	if !ok {
		return
	}
	var req dealRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key != "" {
		key = strconv.FormatInt(id, 10) + ":" + key
		if h.deps.SeenAndRecord(r.Context(), key) {
			writeJSON(w, http.StatusOK, mutationResponse{Duplicate: true, Warnings: []string{}})
			return
		}
	}

	rep, out, err := h.deps.RecordDeal(r.Context(), id, req.amount())
	if err != nil && key != "" {
		h.deps.Unrecord(r.Context(), key)
	}
	switch {
	case errors.Is(err, app.ErrRepNotFound):
		writeJSON(w, http.StatusOK, newMutationResponse(app.Outcome{}))
		return
	case err != nil:
		h.internalError(w, r, err)
		return
	}
	resp := newMutationResponse(out)
	resp.Rep = &rep
	writeJSON(w, http.StatusOK, resp)
}

func (h *RepsHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "request failed",
		logger.String("path", r.URL.Path),
		logger.String("request_id", RequestIDFrom(r.Context())),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal_error", nil)
}

func repID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", fmt.Errorf("%w: %q", ErrInvalidID, raw))
		return 0, false
	}
	return id, true
}
