package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/cache"
	"github.com/vewake/tle-assignment/internal/models"
	"github.com/vewake/tle-assignment/internal/repository"
	"github.com/vewake/tle-assignment/internal/service/integration"
)

// ApplyBundle merges freshly fetched judge data into student. The snapshot is
// replaced as a whole; isActive is only recomputed when submissions came back.
func ApplyBundle(student *models.Student, bundle *models.ProfileBundle, windowDays int, now time.Time) {
	rating := 0
	if bundle.User.Rating != nil {
		rating = *bundle.User.Rating
	}

	maxRating := rating
	if bundle.User.MaxRating != nil && *bundle.User.MaxRating != 0 {
		maxRating = *bundle.User.MaxRating
	}

	student.CurrentRating = rating
	student.MaxRating = maxRating

	contests := bundle.Contests
	if contests == nil {
		contests = []models.Contest{}
	}
	submissions := bundle.Submissions
	if submissions == nil {
		submissions = []models.Submission{}
	}

	student.CodeforcesData = models.CodeforcesData{
		Contests:     contests,
		Submissions:  submissions,
		LastSyncTime: now,
	}

	if len(submissions) > 0 {
		student.IsActive = IsActive(submissions, windowDays, now)
	}

	student.LastUpdated = now
}

// Reconciler fetches a student's judge data and persists the merged record.
type Reconciler struct {
	judge       integration.JudgeClient
	studentRepo repository.StudentRepository
	cache       *cache.StudentCache
	logger      zerolog.Logger
	now         func() time.Time
}

func NewReconciler(
	judge integration.JudgeClient,
	studentRepo repository.StudentRepository,
	studentCache *cache.StudentCache,
	logger zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		judge:       judge,
		studentRepo: studentRepo,
		cache:       studentCache,
		logger:      logger,
		now:         time.Now,
	}
}

// Reconcile returns the updated copy of student. A failed fetch leaves the
// stored record untouched; a failed write is returned as a PersistenceError
// with no rollback, since the write is a whole-record overwrite.
func (r *Reconciler) Reconcile(ctx context.Context, student *models.Student, windowDays int) (*models.Student, error) {
	bundle, err := r.judge.FetchProfile(ctx, student.CodeforcesHandle)
	if err != nil {
		return nil, err
	}

	now := r.now()
	updated := *student
	ApplyBundle(&updated, bundle, windowDays, now)
	updated.UpdatedAt = now

	if err := r.studentRepo.Update(ctx, &updated); err != nil {
		return nil, &models.PersistenceError{Op: "update student", Err: err}
	}

	r.cache.Invalidate(ctx, updated.ID)

	r.logger.Info().
		Str("student_id", updated.ID).
		Str("handle", updated.CodeforcesHandle).
		Int("current_rating", updated.CurrentRating).
		Bool("is_active", updated.IsActive).
		Msg("Student data reconciled")

	return &updated, nil
}
