package httpd

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vewake/tle-assignment/internal/service"
)

func (h *Handler) ExportStudents(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.ExportStudents(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("students-%s.xlsx", time.Now().UTC().Format("2006-01-02"))

	w.Header().Set("Content-Type", service.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write export response")
	}
}

func (h *Handler) ArchiveExport(w http.ResponseWriter, r *http.Request) {
	archive, err := h.exportService.ArchiveExport(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccessStatus(w, http.StatusCreated, archive)
}
