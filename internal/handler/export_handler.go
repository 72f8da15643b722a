package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/waitlist/backend/internal/service"
)

// HeaderTotalCount carries the number of stored signups on an export.
const HeaderTotalCount = "X-Total-Count"

// ExportHandler streams the waitlist as CSV.
type ExportHandler struct {
	exportService   service.ExportService
	waitlistService service.WaitlistService
	now             func() time.Time
}

func NewExportHandler(exportService service.ExportService, waitlistService service.WaitlistService) *ExportHandler {
	return &ExportHandler{exportService: exportService, waitlistService: waitlistService, now: time.Now}
}

// sniffWriter notes whether anything reached the client.
type sniffWriter struct {
	http.ResponseWriter
	wrote bool
}

func (s *sniffWriter) Write(b []byte) (int, error) {
	s.wrote = true
	return s.ResponseWriter.Write(b)
}

// Waitlist handles GET /admin/export.
func (h *ExportHandler) Waitlist(w http.ResponseWriter, r *http.Request) {
	total, err := h.waitlistService.Count(r.Context())
	if err != nil {
		writeError(w, r, "waitlist count", err)
		return
	}
	w.Header().Set(HeaderTotalCount, strconv.Itoa(total))

	filename := "waitlist-" + h.now().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	sw := &sniffWriter{ResponseWriter: w}
	rows, err := h.exportService.WriteWaitlistCSV(r.Context(), sw)
	if err != nil {
		if !sw.wrote {
			w.Header().Del("Content-Disposition")
			writeError(w, r, "waitlist export", err)
			return
		}
		// Headers are gone; the truncated body is all the client gets.
		slog.Error("waitlist export interrupted", "error", err, "rows", rows, "request_id", RequestIDFromContext(r.Context()))
		return
	}
	slog.Info("waitlist exported", "rows", rows, "total", total, "request_id", RequestIDFromContext(r.Context()))
}
