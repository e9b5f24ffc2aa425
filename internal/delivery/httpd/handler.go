package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
	"github.com/vewake/tle-assignment/internal/service"
)

type Handler struct {
	studentService  service.StudentService
	syncService     service.SyncService
	settingsService service.SettingsService
	exportService   service.ExportService
	requestTimeout  time.Duration
	logger          zerolog.Logger
}

func NewHandler(
	studentService service.StudentService,
	syncService service.SyncService,
	settingsService service.SettingsService,
	exportService service.ExportService,
	requestTimeout time.Duration,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		studentService:  studentService,
		syncService:     syncService,
		settingsService: settingsService,
		exportService:   exportService,
		requestTimeout:  requestTimeout,
		logger:          logger,
	}
}

// RegisterRoutes mounts the API. A sync pass walks every student with a
// pause between them, so /sync is kept out of the request timeout group.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Group(func(r chi.Router) {
			r.Use(Timeout(h.requestTimeout))

			r.Route("/students", func(r chi.Router) {
				r.Post("/", h.CreateStudent)
				r.Get("/", h.GetAllStudents)
				r.Get("/export", h.ExportStudents)
				r.Post("/export/archive", h.ArchiveExport)
				r.Get("/{id}", h.GetStudentByID)
				r.Put("/{id}", h.UpdateStudent)
				r.Delete("/{id}", h.DeleteStudent)
				r.Get("/{id}/contests", h.GetContestHistory)
				r.Get("/{id}/problems", h.GetProblemStats)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.GetSettings)
				r.Put("/", h.UpdateSettings)
			})

			r.Get("/sync/status", h.GetSyncStatus)
		})

		api.Post("/sync", h.TriggerSync)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "tracker",
		"sync":      h.syncService.Status().State,
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleServiceError maps domain errors onto HTTP statuses. Anything it
// does not recognise is logged and reported as a 500.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr  *models.ValidationError
		lookupErr      *models.LookupError
		persistenceErr *models.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &lookupErr):
		writeError(w, http.StatusBadRequest, lookupErr.Error())
	case errors.Is(err, models.ErrInvalidRequestBody):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrStudentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrEmailTaken), errors.Is(err, models.ErrHandleTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSyncInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStorageDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &persistenceErr):
		h.logger.Error().Err(err).Str("op", persistenceErr.Op).Msg("Persistence error")
		writeError(w, http.StatusInternalServerError, "Failed to save data")
	default:
		h.logger.Error().Err(err).Msg("Service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.ErrInvalidRequestBody
	}
	return nil
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeSuccessStatus(w, http.StatusOK, data)
}

func writeSuccessStatus(w http.ResponseWriter, status int, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, status, response)
}
