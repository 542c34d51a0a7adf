package api

import (
	"bytes"
	"errors"
	"mime"
	"net/http"

	"github.com/okian/salestrack/internal/export"
	"github.com/okian/salestrack/pkg/logger"
)

// ExportHandler serves report downloads.
type ExportHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies, l logger.Logger) *ExportHandler {
	return &ExportHandler{deps: deps, logger: l}
}

// HandleCSV handles GET /api/export.csv requests.
func (h *ExportHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatCSV)
}

// HandleJSON handles GET /api/export.json requests.
func (h *ExportHandler) HandleJSON(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatJSON)
}

func (h *ExportHandler) serve(w http.ResponseWriter, r *http.Request, f export.Format) {
	snap := h.deps.Snapshot(r.Context())

	var buf bytes.Buffer
	err := export.Write(&buf, f, snap.Reps, snap.At, export.WithLocation(h.deps.Location()))
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		writeError(w, http.StatusConflict, "nothing_to_export", err)
		return
	case err != nil:
		h.logger.Error(r.Context(), "export failed",
			logger.String("format", string(f)),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Time("snapshot_at", snap.At),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	name := export.FileName(f, snap.At.In(h.deps.Location()))
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	h.logger.Debug(r.Context(), "export served",
		logger.String("format", string(f)),
		logger.Int("reps", len(snap.Reps)),
		logger.Time("snapshot_at", snap.At),
	)
}
