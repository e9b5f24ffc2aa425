package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
	"github.com/vewake/tle-assignment/internal/repository"
	"github.com/vewake/tle-assignment/internal/service/integration"
)

var ErrSyncInProgress = errors.New("sync already in progress")

const (
	SyncStateIdle    = "idle"
	SyncStateRunning = "running"
)

// Pacer blocks between two students of a sync pass.
type Pacer interface {
	Wait(ctx context.Context) error
}

type fixedDelayPacer struct {
	delay time.Duration
}

func NewFixedDelayPacer(delay time.Duration) Pacer {
	return &fixedDelayPacer{delay: delay}
}

func (p *fixedDelayPacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type SyncService interface {
	RunSync(ctx context.Context) (*models.SyncResult, error)
	Status() models.SyncStatus
}

type syncService struct {
	studentRepo     repository.StudentRepository
	settingsService SettingsService
	reconciler      *Reconciler
	publisher       integration.EventPublisher
	pacer           Pacer
	logger          zerolog.Logger
	now             func() time.Time

	runMu sync.Mutex

	stateMu    sync.RWMutex
	running    bool
	lastResult *models.SyncResult
}

func NewSyncService(
	studentRepo repository.StudentRepository,
	settingsService SettingsService,
	reconciler *Reconciler,
	publisher integration.EventPublisher,
	pacer Pacer,
	logger zerolog.Logger,
) SyncService {
	return &syncService{
		studentRepo:     studentRepo,
		settingsService: settingsService,
		reconciler:      reconciler,
		publisher:       publisher,
		pacer:           pacer,
		logger:          logger,
		now:             time.Now,
	}
}

// RunSync refreshes every student one at a time. A failing student is
// logged and skipped; the pass itself only fails when it cannot start.
func (s *syncService) RunSync(ctx context.Context) (*models.SyncResult, error) {
	if !s.runMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.runMu.Unlock()

	s.setRunning(true)
	defer s.setRunning(false)

	settings, err := s.settingsService.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	students, err := s.studentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	result := &models.SyncResult{
		Total:     len(students),
		StartedAt: s.now(),
	}

	s.logger.Info().
		Int("students", len(students)).
		Int("inactivity_days", settings.InactivityDays).
		Msg("Syncing student data")

	for i := range students {
		student := &students[i]

		updated, err := s.reconciler.Reconcile(ctx, student, settings.InactivityDays)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("student_id", student.ID).
				Str("handle", student.CodeforcesHandle).
				Msg("Failed to sync student")

			result.FailedCount++
			result.Failures = append(result.Failures, models.SyncFailure{
				StudentID:        student.ID,
				CodeforcesHandle: student.CodeforcesHandle,
				Error:            err.Error(),
			})
		} else {
			result.UpdatedCount++
			s.notifyIfInactive(ctx, updated, settings)
		}

		if err := s.pacer.Wait(ctx); err != nil {
			s.logger.Warn().
				Err(err).
				Int("remaining", len(students)-i-1).
				Msg("Sync interrupted, remaining students left for the next run")
			break
		}
	}

	result.FinishedAt = s.now()
	s.setLastResult(result)

	s.logger.Info().
		Int("updated", result.UpdatedCount).
		Int("failed", result.FailedCount).
		Dur("duration", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Data sync completed")

	return result, nil
}

func (s *syncService) notifyIfInactive(ctx context.Context, student *models.Student, settings *models.Settings) {
	if student.IsActive || !student.EmailRemindersEnabled || !settings.EmailEnabled {
		return
	}

	event := &models.StudentInactiveEvent{
		Type:             models.EventStudentInactive,
		StudentID:        student.ID,
		Name:             student.Name,
		Email:            student.Email,
		CodeforcesHandle: student.CodeforcesHandle,
		InactivityDays:   settings.InactivityDays,
		LastSubmissionAt: lastSubmissionAt(student.CodeforcesData.Submissions),
		Timestamp:        s.now().Unix(),
	}

	if err := s.publisher.PublishStudentInactive(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("student_id", student.ID).Msg("Failed to publish inactive event")
	}
}

func (s *syncService) Status() models.SyncStatus {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	state := SyncStateIdle
	if s.running {
		state = SyncStateRunning
	}

	return models.SyncStatus{State: state, LastResult: s.lastResult}
}

func (s *syncService) setRunning(running bool) {
	s.stateMu.Lock()
	s.running = running
	s.stateMu.Unlock()
}

func (s *syncService) setLastResult(result *models.SyncResult) {
	s.stateMu.Lock()
	s.lastResult = result
	s.stateMu.Unlock()
}
