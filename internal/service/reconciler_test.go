package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
)

func TestApplyBundle_Ratings(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		user        models.UserInfo
		wantCurrent int
		wantMax     int
	}{
		{"both absent", models.UserInfo{}, 0, 0},
		{"max absent falls back to rating", models.UserInfo{Rating: intPtr(1500)}, 1500, 1500},
		{"both present", models.UserInfo{Rating: intPtr(1500), MaxRating: intPtr(1720)}, 1500, 1720},
		{"zero max falls back to rating", models.UserInfo{Rating: intPtr(1200), MaxRating: intPtr(0)}, 1200, 1200},
		{"max below current is kept", models.UserInfo{Rating: intPtr(1600), MaxRating: intPtr(1550)}, 1600, 1550},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			student := &models.Student{CurrentRating: 999, MaxRating: 999}
			ApplyBundle(student, &models.ProfileBundle{User: tt.user}, 7, now)

			if student.CurrentRating != tt.wantCurrent || student.MaxRating != tt.wantMax {
				t.Errorf("ratings = (%d, %d), want (%d, %d)",
					student.CurrentRating, student.MaxRating, tt.wantCurrent, tt.wantMax)
			}
		})
	}
}

func TestApplyBundle_NoSubmissionsPreservesActivity(t *testing.T) {
	now := time.Now()

	for _, prior := range []bool{true, false} {
		student := &models.Student{IsActive: prior}
		ApplyBundle(student, &models.ProfileBundle{}, 7, now)

		if student.IsActive != prior {
			t.Errorf("IsActive = %v, want preserved %v", student.IsActive, prior)
		}
	}
}

func TestApplyBundle_RecomputesActivity(t *testing.T) {
	now := time.Now()

	student := &models.Student{IsActive: true}
	ApplyBundle(student, &models.ProfileBundle{
		Submissions: []models.Submission{submissionAt(now.AddDate(0, 0, -30), "OK")},
	}, 7, now)
	if student.IsActive {
		t.Error("student with only old submissions should become inactive")
	}

	student = &models.Student{IsActive: false}
	ApplyBundle(student, &models.ProfileBundle{
		Submissions: []models.Submission{submissionAt(now.Add(-time.Hour), "OK")},
	}, 7, now)
	if !student.IsActive {
		t.Error("student with a recent submission should become active")
	}
}

func TestApplyBundle_ReplacesSnapshot(t *testing.T) {
	now := time.Now()
	student := &models.Student{
		CodeforcesData: models.CodeforcesData{
			Contests:    []models.Contest{{ContestID: 1}, {ContestID: 2}},
			Submissions: []models.Submission{{ID: 1}, {ID: 2}},
		},
	}

	ApplyBundle(student, &models.ProfileBundle{
		Contests:    []models.Contest{{ContestID: 3}},
		Submissions: []models.Submission{{ID: 9, CreationTimeSeconds: now.Unix()}},
	}, 7, now)

	data := student.CodeforcesData
	if len(data.Contests) != 1 || data.Contests[0].ContestID != 3 {
		t.Errorf("contests = %+v, want only contest 3", data.Contests)
	}
	if len(data.Submissions) != 1 || data.Submissions[0].ID != 9 {
		t.Errorf("submissions = %+v, want only submission 9", data.Submissions)
	}
	if !data.LastSyncTime.Equal(now) || !student.LastUpdated.Equal(now) {
		t.Errorf("timestamps not set to now: %v / %v", data.LastSyncTime, student.LastUpdated)
	}
}

func TestReconcile_PersistsUpdatedRecord(t *testing.T) {
	repo := newStubStudentRepo(&models.Student{ID: "s1", CodeforcesHandle: "tourist", IsActive: false})
	judge := &stubJudge{bundles: map[string]*models.ProfileBundle{
		"tourist": {User: models.UserInfo{Rating: intPtr(3500)}},
	}}
	r := NewReconciler(judge, repo, nil, zerolog.Nop())

	student, _ := repo.GetByID(context.Background(), "s1")
	updated, err := r.Reconcile(context.Background(), student, 7)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), "s1")
	if stored.CurrentRating != 3500 || updated.CurrentRating != 3500 {
		t.Errorf("stored rating = %d, returned = %d", stored.CurrentRating, updated.CurrentRating)
	}
	if stored.IsActive {
		t.Error("empty submissions must keep previous inactive flag")
	}
}

func TestReconcile_PersistenceError(t *testing.T) {
	repo := newStubStudentRepo(&models.Student{ID: "s1", CodeforcesHandle: "tourist"})
	repo.updateErr["s1"] = errors.New("disk full")
	judge := &stubJudge{bundles: map[string]*models.ProfileBundle{"tourist": {}}}
	r := NewReconciler(judge, repo, nil, zerolog.Nop())

	student, _ := repo.GetByID(context.Background(), "s1")
	_, err := r.Reconcile(context.Background(), student, 7)

	var persistErr *models.PersistenceError
	if !errors.As(err, &persistErr) {
		t.Fatalf("error = %v, want *models.PersistenceError", err)
	}
}

func TestReconcile_LookupErrorLeavesRecord(t *testing.T) {
	original := &models.Student{ID: "s1", CodeforcesHandle: "ghost", CurrentRating: 1234}
	repo := newStubStudentRepo(original)
	r := NewReconciler(&stubJudge{}, repo, nil, zerolog.Nop())

	_, err := r.Reconcile(context.Background(), original, 7)

	var lookupErr *models.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("error = %v, want *models.LookupError", err)
	}
	if len(repo.updates) != 0 {
		t.Errorf("repo updated %v, want no writes", repo.updates)
	}
}
