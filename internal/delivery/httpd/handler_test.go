package httpd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
	"github.com/vewake/tle-assignment/internal/service"
)

type stubStudentService struct {
	student   *models.Student
	summaries []models.StudentSummary
	err       error
	lastDays  int
	lastReq   *models.UpdateStudentRequest
}

func (s *stubStudentService) CreateStudent(_ context.Context, req *models.CreateStudentRequest) (*models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Student{ID: "new-id", Name: req.Name, CodeforcesHandle: req.CodeforcesHandle}, nil
}

func (s *stubStudentService) GetStudentByID(_ context.Context, id string) (*models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.student, nil
}

func (s *stubStudentService) GetAllStudents(context.Context) ([]models.StudentSummary, error) {
	return s.summaries, s.err
}

func (s *stubStudentService) UpdateStudent(_ context.Context, id string, req *models.UpdateStudentRequest) (*models.Student, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Student{ID: id, Name: req.Name}, nil
}

func (s *stubStudentService) DeleteStudent(context.Context, string) error {
	return s.err
}

func (s *stubStudentService) GetContestHistory(_ context.Context, id string, days int) (*models.ContestHistoryResponse, error) {
	s.lastDays = days
	if s.err != nil {
		return nil, s.err
	}
	return &models.ContestHistoryResponse{StudentID: id, Days: days, Contests: []models.ContestEntry{}}, nil
}

func (s *stubStudentService) GetProblemStats(_ context.Context, id string, days int) (*models.ProblemStatsResponse, error) {
	s.lastDays = days
	if s.err != nil {
		return nil, s.err
	}
	return &models.ProblemStatsResponse{StudentID: id, Days: days}, nil
}

type stubSyncService struct {
	result *models.SyncResult
	err    error
	calls  int
}

func (s *stubSyncService) RunSync(context.Context) (*models.SyncResult, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubSyncService) Status() models.SyncStatus {
	return models.SyncStatus{State: service.SyncStateIdle, LastResult: s.result}
}

type stubSettingsService struct {
	settings models.Settings
	err      error
}

func (s *stubSettingsService) GetSettings(context.Context) (*models.Settings, error) {
	return &s.settings, s.err
}

func (s *stubSettingsService) UpdateSettings(_ context.Context, req *models.UpdateSettingsRequest) (*models.Settings, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.settings.CronTime = req.CronTime
	return &s.settings, nil
}

type stubExportService struct {
	data []byte
	err  error
}

func (s *stubExportService) ExportStudents(context.Context) ([]byte, error) {
	return s.data, s.err
}

func (s *stubExportService) ArchiveExport(context.Context) (*models.ArchiveResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ArchiveResponse{Bucket: "student-exports", ObjectKey: "exports/x.xlsx"}, nil
}

type testServer struct {
	students *stubStudentService
	sync     *stubSyncService
	settings *stubSettingsService
	export   *stubExportService
	router   chi.Router
}

func newTestServer() *testServer {
	ts := &testServer{
		students: &stubStudentService{},
		sync:     &stubSyncService{},
		settings: &stubSettingsService{settings: models.DefaultSettings()},
		export:   &stubExportService{},
	}

	h := NewHandler(ts.students, ts.sync, ts.settings, ts.export, 0, zerolog.Nop())
	ts.router = chi.NewRouter()
	h.RegisterRoutes(ts.router)

	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestCreateStudent(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/v1/students", `{"name":"Alice","email":"a@example.com","phone":"1","codeforces_handle":"alice"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	data, _ := body["data"].(map[string]interface{})
	if body["success"] != true || data["id"] != "new-id" || data["codeforces_handle"] != "alice" {
		t.Errorf("body = %v", body)
	}
}

func TestCreateStudent_InvalidJSON(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/v1/students", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &models.ValidationError{Field: "email", Message: "is required"}, http.StatusBadRequest},
		{"lookup", &models.LookupError{Handle: "ghost", Err: errors.New("not found")}, http.StatusBadRequest},
		{"not found", models.ErrStudentNotFound, http.StatusNotFound},
		{"wrapped not found", errors.Join(errors.New("context"), models.ErrStudentNotFound), http.StatusNotFound},
		{"email taken", models.ErrEmailTaken, http.StatusConflict},
		{"handle taken", models.ErrHandleTaken, http.StatusConflict},
		{"persistence", &models.PersistenceError{Op: "update student", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"unknown", errors.New("weird"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer()
			ts.students.err = tt.err

			rec := ts.do(http.MethodPut, "/api/v1/students/s1", `{"name":"Alice","email":"a@example.com","codeforces_handle":"alice"}`)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}

			body := decodeBody(t, rec)
			if body["error"] != http.StatusText(tt.want) {
				t.Errorf("error = %v, want %q", body["error"], http.StatusText(tt.want))
			}
		})
	}
}

func TestUpdateStudent_PassesOptionalFlags(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPut, "/api/v1/students/s1", `{"name":"Alice","email":"a@example.com","codeforces_handle":"alice","is_active":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	req := ts.students.lastReq
	if req == nil || req.IsActive == nil || *req.IsActive {
		t.Errorf("is_active not forwarded: %+v", req)
	}
	if req.EmailRemindersEnabled != nil {
		t.Error("omitted email_reminders_enabled should stay nil")
	}
}

func TestGetAllStudents_EmptyList(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/v1/students", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	if students, ok := data["students"].([]interface{}); !ok || len(students) != 0 {
		t.Errorf("students = %v, want empty array", data["students"])
	}
	if data["total"] != float64(0) {
		t.Errorf("total = %v, want 0", data["total"])
	}
}

func TestDeleteStudent_NotFound(t *testing.T) {
	ts := newTestServer()
	ts.students.err = models.ErrStudentNotFound

	rec := ts.do(http.MethodDelete, "/api/v1/students/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStatsEndpointsReadDays(t *testing.T) {
	ts := newTestServer()

	for _, path := range []string{"/api/v1/students/s1/contests?days=90", "/api/v1/students/s1/problems?days=90"} {
		ts.students.lastDays = -1
		rec := ts.do(http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
		if ts.students.lastDays != 90 {
			t.Errorf("%s days = %d, want 90", path, ts.students.lastDays)
		}
	}

	ts.do(http.MethodGet, "/api/v1/students/s1/contests?days=abc", "")
	if ts.students.lastDays != 0 {
		t.Errorf("malformed days = %d, want default 0", ts.students.lastDays)
	}
}

func TestTriggerSync(t *testing.T) {
	ts := newTestServer()
	ts.sync.result = &models.SyncResult{Total: 3, UpdatedCount: 2, FailedCount: 1}

	rec := ts.do(http.MethodPost, "/api/v1/sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	data := decodeBody(t, rec)["data"].(map[string]interface{})
	if data["updated_count"] != float64(2) {
		t.Errorf("updated_count = %v, want 2", data["updated_count"])
	}
}

func TestTriggerSync_AlreadyRunning(t *testing.T) {
	ts := newTestServer()
	ts.sync.err = service.ErrSyncInProgress

	rec := ts.do(http.MethodPost, "/api/v1/sync", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestSettings(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/v1/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	if data["cron_time"] != "02:00" {
		t.Errorf("cron_time = %v", data["cron_time"])
	}
	if smtp, _ := data["smtp"].(map[string]interface{}); smtp["password"] != nil {
		t.Error("smtp password must never be returned")
	}

	rec = ts.do(http.MethodPut, "/api/v1/settings", `{"cron_time":"04:15","cron_frequency":"daily","inactivity_days":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", rec.Code)
	}
	if ts.settings.settings.CronTime != "04:15" {
		t.Errorf("cron_time not updated")
	}
}

func TestExportStudents(t *testing.T) {
	ts := newTestServer()
	ts.export.data = []byte("PK-fake-workbook")

	rec := ts.do(http.MethodGet, "/api/v1/students/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != service.XLSXContentType {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
		t.Errorf("content disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Body.String() != "PK-fake-workbook" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestArchiveExport_StorageDisabled(t *testing.T) {
	ts := newTestServer()
	ts.export.err = service.ErrStorageDisabled

	rec := ts.do(http.MethodPost, "/api/v1/students/export/archive", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
