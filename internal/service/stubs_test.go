package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vewake/tle-assignment/internal/models"
)

type stubStudentRepo struct {
	mu        sync.Mutex
	students  map[string]*models.Student
	updateErr map[string]error
	updates   []string
}

func newStubStudentRepo(students ...*models.Student) *stubStudentRepo {
	r := &stubStudentRepo{
		students:  map[string]*models.Student{},
		updateErr: map[string]error{},
	}
	for _, s := range students {
		c := *s
		r.students[s.ID] = &c
	}
	return r
}

func (r *stubStudentRepo) Create(_ context.Context, s *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *s
	r.students[s.ID] = &c
	return nil
}

func (r *stubStudentRepo) find(match func(*models.Student) bool) *models.Student {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if match(s) {
			c := *s
			return &c
		}
	}
	return nil
}

func (r *stubStudentRepo) GetByID(_ context.Context, id string) (*models.Student, error) {
	return r.find(func(s *models.Student) bool { return s.ID == id }), nil
}

func (r *stubStudentRepo) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	return r.find(func(s *models.Student) bool { return s.Email == email }), nil
}

func (r *stubStudentRepo) GetByHandle(_ context.Context, handle string) (*models.Student, error) {
	return r.find(func(s *models.Student) bool { return strings.EqualFold(s.CodeforcesHandle, handle) }), nil
}

func (r *stubStudentRepo) ordered() []models.Student {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *stubStudentRepo) ListSummaries(_ context.Context) ([]models.StudentSummary, error) {
	var out []models.StudentSummary
	for _, s := range r.ordered() {
		out = append(out, s.Summary())
	}
	return out, nil
}

func (r *stubStudentRepo) ListAll(_ context.Context) ([]models.Student, error) {
	return r.ordered(), nil
}

func (r *stubStudentRepo) Update(_ context.Context, s *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[s.ID]; err != nil {
		return err
	}
	if _, ok := r.students[s.ID]; !ok {
		return models.ErrStudentNotFound
	}
	c := *s
	r.students[s.ID] = &c
	r.updates = append(r.updates, s.ID)
	return nil
}

func (r *stubStudentRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[id]; !ok {
		return false, nil
	}
	delete(r.students, id)
	return true, nil
}

type stubSettingsRepo struct {
	settings *models.Settings
	saveErr  error
}

func (r *stubSettingsRepo) Get(context.Context) (*models.Settings, error) {
	if r.settings == nil {
		return nil, nil
	}
	c := *r.settings
	return &c, nil
}

func (r *stubSettingsRepo) Save(_ context.Context, s *models.Settings) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	c := *s
	r.settings = &c
	return nil
}

type stubJudge struct {
	mu      sync.Mutex
	bundles map[string]*models.ProfileBundle
	calls   []string
	block   chan struct{}
}

func (j *stubJudge) FetchProfile(_ context.Context, handle string) (*models.ProfileBundle, error) {
	j.mu.Lock()
	j.calls = append(j.calls, handle)
	bundle, ok := j.bundles[handle]
	block := j.block
	j.mu.Unlock()

	if block != nil {
		<-block
	}

	if !ok {
		return nil, &models.LookupError{Handle: handle, Err: errors.New("handle not found")}
	}
	return bundle, nil
}

func (j *stubJudge) callCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.calls)
}

type stubPublisher struct {
	mu     sync.Mutex
	events []*models.StudentInactiveEvent
}

func (p *stubPublisher) PublishStudentInactive(_ context.Context, e *models.StudentInactiveEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func submissionAt(t time.Time, verdict string) models.Submission {
	return models.Submission{
		ID:                  t.Unix(),
		CreationTimeSeconds: t.Unix(),
		Verdict:             verdict,
	}
}
