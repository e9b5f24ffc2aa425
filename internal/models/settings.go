package models

import "time"

type SyncFrequency string

const (
	FrequencyDaily      SyncFrequency = "daily"
	FrequencyTwiceDaily SyncFrequency = "twice-daily"
	FrequencyWeekly     SyncFrequency = "weekly"
)

func (f SyncFrequency) String() string {
	return string(f)
}

func IsValidSyncFrequency(frequency string) bool {
	switch SyncFrequency(frequency) {
	case FrequencyDaily, FrequencyTwiceDaily, FrequencyWeekly:
		return true
	default:
		return false
	}
}

const DefaultInactivityDays = 7

// Settings holds the scheduling and notification preferences. The scheduler
// that honours CronTime/CronFrequency runs outside this service.
type Settings struct {
	CronTime       string        `json:"cron_time" db:"cron_time"`
	CronFrequency  SyncFrequency `json:"cron_frequency" db:"cron_frequency"`
	EmailEnabled   bool          `json:"email_enabled" db:"email_enabled"`
	InactivityDays int           `json:"inactivity_days" db:"inactivity_days"`
	SMTP           SMTPConfig    `json:"smtp"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

type SMTPConfig struct {
	Host     string `json:"host" db:"smtp_host"`
	Port     int    `json:"port" db:"smtp_port"`
	User     string `json:"user" db:"smtp_user"`
	Password string `json:"-" db:"smtp_password"`
}

func DefaultSettings() Settings {
	return Settings{
		CronTime:       "02:00",
		CronFrequency:  FrequencyDaily,
		EmailEnabled:   true,
		InactivityDays: DefaultInactivityDays,
		SMTP: SMTPConfig{
			Port: 587,
		},
	}
}
