package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/cache"
	"github.com/vewake/tle-assignment/internal/models"
	"github.com/vewake/tle-assignment/internal/repository"
	"github.com/vewake/tle-assignment/internal/service/integration"
)

type StudentService interface {
	CreateStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error)
	GetStudentByID(ctx context.Context, id string) (*models.Student, error)
	GetAllStudents(ctx context.Context) ([]models.StudentSummary, error)
	UpdateStudent(ctx context.Context, id string, req *models.UpdateStudentRequest) (*models.Student, error)
	DeleteStudent(ctx context.Context, id string) error
	GetContestHistory(ctx context.Context, id string, days int) (*models.ContestHistoryResponse, error)
	GetProblemStats(ctx context.Context, id string, days int) (*models.ProblemStatsResponse, error)
}

type studentService struct {
	studentRepo     repository.StudentRepository
	settingsService SettingsService
	judge           integration.JudgeClient
	cache           *cache.StudentCache
	validate        *validator.Validate
	logger          zerolog.Logger
	now             func() time.Time
}

func NewStudentService(
	studentRepo repository.StudentRepository,
	settingsService SettingsService,
	judge integration.JudgeClient,
	studentCache *cache.StudentCache,
	logger zerolog.Logger,
) StudentService {
	return &studentService{
		studentRepo:     studentRepo,
		settingsService: settingsService,
		judge:           judge,
		cache:           studentCache,
		validate:        newValidator(),
		logger:          logger,
		now:             time.Now,
	}
}

func (s *studentService) CreateStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.CodeforcesHandle = strings.TrimSpace(req.CodeforcesHandle)

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, "", req.Email, req.CodeforcesHandle); err != nil {
		return nil, err
	}

	settings, err := s.settingsService.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	bundle, err := s.judge.FetchProfile(ctx, req.CodeforcesHandle)
	if err != nil {
		return nil, err
	}

	now := s.now()
	student := &models.Student{
		ID:                    uuid.New().String(),
		Name:                  req.Name,
		Email:                 req.Email,
		Phone:                 req.Phone,
		CodeforcesHandle:      req.CodeforcesHandle,
		EmailRemindersEnabled: boolOr(req.EmailRemindersEnabled, true),
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	ApplyBundle(student, bundle, settings.InactivityDays, now)
	// A new record has no previous activity to preserve.
	if len(bundle.Submissions) == 0 {
		student.IsActive = false
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, models.ErrEmailTaken) || errors.Is(err, models.ErrHandleTaken) {
			return nil, err
		}
		return nil, &models.PersistenceError{Op: "create student", Err: err}
	}

	s.cache.Invalidate(ctx)

	s.logger.Info().
		Str("student_id", student.ID).
		Str("handle", student.CodeforcesHandle).
		Int("current_rating", student.CurrentRating).
		Msg("Student created")

	return student, nil
}

func (s *studentService) GetStudentByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := s.cache.GetStudent(ctx, id); ok {
		return student, nil
	}

	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, models.ErrStudentNotFound
	}

	s.cache.SetStudent(ctx, student)

	return student, nil
}

func (s *studentService) GetAllStudents(ctx context.Context) ([]models.StudentSummary, error) {
	if students, ok := s.cache.GetList(ctx); ok {
		return students, nil
	}

	students, err := s.studentRepo.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all students: %w", err)
	}

	s.cache.SetList(ctx, students)

	return students, nil
}

// UpdateStudent re-fetches judge data only when the handle changes. If that
// fetch fails the stored record is left exactly as it was.
func (s *studentService) UpdateStudent(ctx context.Context, id string, req *models.UpdateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.CodeforcesHandle = strings.TrimSpace(req.CodeforcesHandle)

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	existing, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if existing == nil {
		return nil, models.ErrStudentNotFound
	}

	email := ""
	if req.Email != existing.Email {
		email = req.Email
	}
	handleChanged := req.CodeforcesHandle != existing.CodeforcesHandle
	handle := ""
	if handleChanged {
		handle = req.CodeforcesHandle
	}
	if err := s.ensureUnique(ctx, id, email, handle); err != nil {
		return nil, err
	}

	updated := *existing
	updated.Name = req.Name
	updated.Email = req.Email
	updated.Phone = req.Phone
	updated.CodeforcesHandle = req.CodeforcesHandle
	updated.EmailRemindersEnabled = boolOr(req.EmailRemindersEnabled, true)
	updated.IsActive = boolOr(req.IsActive, true)

	now := s.now()
	if handleChanged {
		settings, err := s.settingsService.GetSettings(ctx)
		if err != nil {
			return nil, err
		}

		bundle, err := s.judge.FetchProfile(ctx, req.CodeforcesHandle)
		if err != nil {
			return nil, err
		}

		ApplyBundle(&updated, bundle, settings.InactivityDays, now)
	}

	updated.LastUpdated = now
	updated.UpdatedAt = now

	if err := s.studentRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, models.ErrStudentNotFound) ||
			errors.Is(err, models.ErrEmailTaken) ||
			errors.Is(err, models.ErrHandleTaken) {
			return nil, err
		}
		return nil, &models.PersistenceError{Op: "update student", Err: err}
	}

	s.cache.Invalidate(ctx, id)

	s.logger.Info().
		Str("student_id", id).
		Bool("handle_changed", handleChanged).
		Msg("Student updated")

	return &updated, nil
}

func (s *studentService) DeleteStudent(ctx context.Context, id string) error {
	deleted, err := s.studentRepo.Delete(ctx, id)
	if err != nil {
		return &models.PersistenceError{Op: "delete student", Err: err}
	}
	if !deleted {
		return models.ErrStudentNotFound
	}

	s.cache.Invalidate(ctx, id)

	s.logger.Info().Str("student_id", id).Msg("Student deleted")

	return nil
}

func (s *studentService) GetContestHistory(ctx context.Context, id string, days int) (*models.ContestHistoryResponse, error) {
	student, err := s.GetStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	contests, summary := BuildContestHistory(student.CodeforcesData.Contests, days, s.now())

	return &models.ContestHistoryResponse{
		StudentID: id,
		Days:      days,
		Contests:  contests,
		Summary:   summary,
	}, nil
}

func (s *studentService) GetProblemStats(ctx context.Context, id string, days int) (*models.ProblemStatsResponse, error) {
	student, err := s.GetStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := BuildProblemStats(student.CodeforcesData.Submissions, days, s.now())
	stats.StudentID = id

	return &stats, nil
}

// ensureUnique checks email and handle against other students. Empty values
// are skipped; excludeID is the student being edited.
func (s *studentService) ensureUnique(ctx context.Context, excludeID, email, handle string) error {
	if email != "" {
		other, err := s.studentRepo.GetByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email availability: %w", err)
		}
		if other != nil && other.ID != excludeID {
			return models.ErrEmailTaken
		}
	}

	if handle != "" {
		other, err := s.studentRepo.GetByHandle(ctx, handle)
		if err != nil {
			return fmt.Errorf("failed to check handle availability: %w", err)
		}
		if other != nil && other.ID != excludeID {
			return models.ErrHandleTaken
		}
	}

	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
