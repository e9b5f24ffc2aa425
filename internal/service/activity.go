package service

import (
	"time"

	"github.com/vewake/tle-assignment/internal/models"
)

// IsActive reports whether any submission was created within the trailing
// window of windowDays days ending at now, bounds included.
func IsActive(submissions []models.Submission, windowDays int, now time.Time) bool {
	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)

	for _, sub := range submissions {
		created := sub.CreatedAt()
		if !created.Before(cutoff) && !created.After(now) {
			return true
		}
	}

	return false
}

func lastSubmissionAt(submissions []models.Submission) *int64 {
	var latest *int64
	for i := range submissions {
		ts := submissions[i].CreationTimeSeconds
		if latest == nil || ts > *latest {
			latest = &ts
		}
	}
	return latest
}
