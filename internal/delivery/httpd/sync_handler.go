package httpd

import (
	"net/http"
)

// TriggerSync runs a full pass and answers once it is done.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	h.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Manual sync requested")

	result, err := h.syncService.RunSync(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, result)
}

func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.syncService.Status())
}
