package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vewake/tle-assignment/internal/models"
)

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	student, err := h.studentService.CreateStudent(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccessStatus(w, http.StatusCreated, student)
}

func (h *Handler) GetStudentByID(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	student, err := h.studentService.GetStudentByID(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, student)
}

func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.studentService.GetAllStudents(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if students == nil {
		students = []models.StudentSummary{}
	}

	writeSuccess(w, models.StudentsResponse{
		Students: students,
		Total:    len(students),
	})
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var req models.UpdateStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleServiceError(w, err)
		return
	}

	student, err := h.studentService.UpdateStudent(r.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, student)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	if err := h.studentService.DeleteStudent(r.Context(), studentID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Student deleted successfully",
	})
}

func (h *Handler) GetContestHistory(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	days := getIntQueryParam(r, "days", 0)

	history, err := h.studentService.GetContestHistory(r.Context(), studentID, days)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, history)
}

func (h *Handler) GetProblemStats(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	days := getIntQueryParam(r, "days", 0)

	stats, err := h.studentService.GetProblemStats(r.Context(), studentID, days)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, stats)
}
