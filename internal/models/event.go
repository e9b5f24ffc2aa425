package models

const (
	EventStudentInactive = "student.inactive"
	EventSyncRequested   = "sync.requested"
)

type StudentInactiveEvent struct {
	Type             string `json:"type"`
	StudentID        string `json:"student_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	CodeforcesHandle string `json:"codeforces_handle"`
	InactivityDays   int    `json:"inactivity_days"`
	LastSubmissionAt *int64 `json:"last_submission_at,omitempty"`
	Timestamp        int64  `json:"timestamp"`
}

type SyncRequestedEvent struct {
	Type        string `json:"type"`
	RequestedBy string `json:"requested_by,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}
