package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Student struct {
	ID                    string         `json:"id" db:"id"`
	Name                  string         `json:"name" db:"name"`
	Email                 string         `json:"email" db:"email"`
	Phone                 string         `json:"phone" db:"phone"`
	CodeforcesHandle      string         `json:"codeforces_handle" db:"codeforces_handle"`
	CurrentRating         int            `json:"current_rating" db:"current_rating"`
	MaxRating             int            `json:"max_rating" db:"max_rating"`
	LastUpdated           time.Time      `json:"last_updated" db:"last_updated"`
	EmailRemindersEnabled bool           `json:"email_reminders_enabled" db:"email_reminders_enabled"`
	ReminderCount         int            `json:"reminder_count" db:"reminder_count"`
	IsActive              bool           `json:"is_active" db:"is_active"`
	CodeforcesData        CodeforcesData `json:"codeforces_data" db:"codeforces_data"`
	CreatedAt             time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at" db:"updated_at"`
}

// StudentSummary is the list view of a student, without the judge snapshot.
type StudentSummary struct {
	ID                    string    `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	Email                 string    `json:"email" db:"email"`
	Phone                 string    `json:"phone" db:"phone"`
	CodeforcesHandle      string    `json:"codeforces_handle" db:"codeforces_handle"`
	CurrentRating         int       `json:"current_rating" db:"current_rating"`
	MaxRating             int       `json:"max_rating" db:"max_rating"`
	LastUpdated           time.Time `json:"last_updated" db:"last_updated"`
	EmailRemindersEnabled bool      `json:"email_reminders_enabled" db:"email_reminders_enabled"`
	ReminderCount         int       `json:"reminder_count" db:"reminder_count"`
	IsActive              bool      `json:"is_active" db:"is_active"`
}

// CodeforcesData is the judge snapshot embedded in a student record.
// It is stored as a single JSONB column and always replaced as a whole.
type CodeforcesData struct {
	Contests     []Contest    `json:"contests"`
	Submissions  []Submission `json:"submissions"`
	LastSyncTime time.Time    `json:"lastSyncTime"`
}

func (d CodeforcesData) Value() (driver.Value, error) {
	if d.Contests == nil {
		d.Contests = []Contest{}
	}
	if d.Submissions == nil {
		d.Submissions = []Submission{}
	}
	return json.Marshal(d)
}

func (d *CodeforcesData) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*d = CodeforcesData{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("codeforces_data: unsupported source type")
	}
	return json.Unmarshal(data, d)
}

type Contest struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Handle                  string `json:"handle"`
	Rank                    int    `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
}

type Submission struct {
	ID                  int64   `json:"id"`
	ContestID           int     `json:"contestId"`
	CreationTimeSeconds int64   `json:"creationTimeSeconds"`
	RelativeTimeSeconds int64   `json:"relativeTimeSeconds"`
	Problem             Problem `json:"problem"`
	Author              Author  `json:"author"`
	ProgrammingLanguage string  `json:"programmingLanguage"`
	Verdict             string  `json:"verdict"`
	Testset             string  `json:"testset"`
	PassedTestCount     int     `json:"passedTestCount"`
	TimeConsumedMillis  int64   `json:"timeConsumedMillis"`
	MemoryConsumedBytes int64   `json:"memoryConsumedBytes"`
}

func (s Submission) CreatedAt() time.Time {
	return time.Unix(s.CreationTimeSeconds, 0)
}

type Problem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Rating    *int     `json:"rating,omitempty"`
	Tags      []string `json:"tags"`
}

type Author struct {
	ContestID        int      `json:"contestId"`
	Members          []Member `json:"members"`
	ParticipantType  string   `json:"participantType"`
	Ghost            bool     `json:"ghost"`
	StartTimeSeconds int64    `json:"startTimeSeconds"`
}

type Member struct {
	Handle string `json:"handle"`
}

// UserInfo is the judge profile of a handle. Rating fields are absent for
// handles that never took part in a rated contest.
type UserInfo struct {
	Handle    string `json:"handle"`
	Rating    *int   `json:"rating,omitempty"`
	MaxRating *int   `json:"maxRating,omitempty"`
	Rank      string `json:"rank,omitempty"`
	MaxRank   string `json:"maxRank,omitempty"`
}

// ProfileBundle is everything fetched for one handle in a single lookup.
type ProfileBundle struct {
	User        UserInfo
	Contests    []Contest
	Submissions []Submission
}

func (s *Student) Summary() StudentSummary {
	return StudentSummary{
		ID:                    s.ID,
		Name:                  s.Name,
		Email:                 s.Email,
		Phone:                 s.Phone,
		CodeforcesHandle:      s.CodeforcesHandle,
		CurrentRating:         s.CurrentRating,
		MaxRating:             s.MaxRating,
		LastUpdated:           s.LastUpdated,
		EmailRemindersEnabled: s.EmailRemindersEnabled,
		ReminderCount:         s.ReminderCount,
		IsActive:              s.IsActive,
	}
}
