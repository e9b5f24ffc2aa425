package models

import "time"

// Data Transfer Objects

type CreateStudentRequest struct {
	Name                  string `json:"name" validate:"required,min=2,max=255"`
	Email                 string `json:"email" validate:"required,email,max=255"`
	Phone                 string `json:"phone" validate:"required,max=32"`
	CodeforcesHandle      string `json:"codeforces_handle" validate:"required,min=3,max=24"`
	EmailRemindersEnabled *bool  `json:"email_reminders_enabled"`
}

type UpdateStudentRequest struct {
	Name                  string `json:"name" validate:"required,min=2,max=255"`
	Email                 string `json:"email" validate:"required,email,max=255"`
	Phone                 string `json:"phone" validate:"max=32"`
	CodeforcesHandle      string `json:"codeforces_handle" validate:"required,min=3,max=24"`
	EmailRemindersEnabled *bool  `json:"email_reminders_enabled"`
	IsActive              *bool  `json:"is_active"`
}

type UpdateSettingsRequest struct {
	CronTime       string `json:"cron_time" validate:"required,hhmm"`
	CronFrequency  string `json:"cron_frequency" validate:"required,oneof=daily twice-daily weekly"`
	EmailEnabled   *bool  `json:"email_enabled"`
	InactivityDays int    `json:"inactivity_days" validate:"required,min=1,max=365"`
	SMTPHost       string `json:"smtp_host" validate:"omitempty,hostname|ip"`
	SMTPPort       int    `json:"smtp_port" validate:"omitempty,min=1,max=65535"`
	SMTPUser       string `json:"smtp_user" validate:"max=255"`
	SMTPPassword   string `json:"smtp_password" validate:"max=255"`
}

type StudentsResponse struct {
	Students []StudentSummary `json:"students"`
	Total    int              `json:"total"`
}

type ContestEntry struct {
	ContestID    int       `json:"contest_id"`
	ContestName  string    `json:"contest_name"`
	Date         time.Time `json:"date"`
	Rank         int       `json:"rank"`
	OldRating    int       `json:"old_rating"`
	NewRating    int       `json:"new_rating"`
	RatingChange int       `json:"rating_change"`
}

type RatingSummary struct {
	Current     int `json:"current"`
	Highest     int `json:"highest"`
	Lowest      int `json:"lowest"`
	TotalChange int `json:"total_change"`
}

type ContestHistoryResponse struct {
	StudentID string         `json:"student_id"`
	Days      int            `json:"days"`
	Contests  []ContestEntry `json:"contests"`
	Summary   *RatingSummary `json:"summary,omitempty"`
}

type RatingBucket struct {
	Rating string `json:"rating"`
	Count  int    `json:"count"`
}

type ProblemStatsResponse struct {
	StudentID           string         `json:"student_id"`
	Days                int            `json:"days"`
	MostDifficultRating int            `json:"most_difficult_rating"`
	TotalSolved         int            `json:"total_solved"`
	AverageRating       int            `json:"average_rating"`
	AveragePerDay       float64        `json:"average_per_day"`
	RatingDistribution  []RatingBucket `json:"rating_distribution"`
	SubmissionsPerDay   map[string]int `json:"submissions_per_day"`
}

type SyncFailure struct {
	StudentID        string `json:"student_id"`
	CodeforcesHandle string `json:"codeforces_handle"`
	Error            string `json:"error"`
}

type SyncResult struct {
	Total        int           `json:"total"`
	UpdatedCount int           `json:"updated_count"`
	FailedCount  int           `json:"failed_count"`
	Failures     []SyncFailure `json:"failures,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
}

type SyncStatus struct {
	State      string      `json:"state"`
	LastResult *SyncResult `json:"last_result,omitempty"`
}

type ArchiveResponse struct {
	Bucket    string    `json:"bucket"`
	ObjectKey string    `json:"object_key"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
