package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
)

func TestGetSettings_DefaultsWhenUnset(t *testing.T) {
	svc := NewSettingsService(&stubSettingsRepo{}, zerolog.Nop())

	settings, err := svc.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings() error = %v", err)
	}

	want := models.DefaultSettings()
	if settings.CronTime != want.CronTime || settings.InactivityDays != 7 || !settings.EmailEnabled || settings.SMTP.Port != 587 {
		t.Errorf("settings = %+v, want defaults", settings)
	}
}

func TestUpdateSettings(t *testing.T) {
	stored := models.DefaultSettings()
	stored.SMTP.Password = "s3cret"
	repo := &stubSettingsRepo{settings: &stored}
	svc := NewSettingsService(repo, zerolog.Nop())

	updated, err := svc.UpdateSettings(context.Background(), &models.UpdateSettingsRequest{
		CronTime:       "23:30",
		CronFrequency:  "weekly",
		EmailEnabled:   boolPtr(false),
		InactivityDays: 14,
		SMTPHost:       "smtp.example.com",
		SMTPUser:       "mailer",
	})
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	if updated.CronTime != "23:30" || updated.CronFrequency != models.FrequencyWeekly || updated.InactivityDays != 14 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.EmailEnabled {
		t.Error("email_enabled should be false")
	}
	if updated.SMTP.Password != "s3cret" {
		t.Error("empty password must keep the stored one")
	}
	if updated.SMTP.Port != 587 {
		t.Errorf("port = %d, want unchanged 587", updated.SMTP.Port)
	}
	if repo.settings.SMTP.Host != "smtp.example.com" {
		t.Errorf("stored host = %q", repo.settings.SMTP.Host)
	}
}

func TestUpdateSettings_Validation(t *testing.T) {
	valid := func() *models.UpdateSettingsRequest {
		return &models.UpdateSettingsRequest{CronTime: "02:00", CronFrequency: "daily", InactivityDays: 7}
	}

	tests := []struct {
		name   string
		mutate func(*models.UpdateSettingsRequest)
		field  string
	}{
		{"bad time", func(r *models.UpdateSettingsRequest) { r.CronTime = "25:00" }, "cron_time"},
		{"bad frequency", func(r *models.UpdateSettingsRequest) { r.CronFrequency = "hourly" }, "cron_frequency"},
		{"zero days", func(r *models.UpdateSettingsRequest) { r.InactivityDays = 0 }, "inactivity_days"},
		{"too many days", func(r *models.UpdateSettingsRequest) { r.InactivityDays = 400 }, "inactivity_days"},
		{"bad port", func(r *models.UpdateSettingsRequest) { r.SMTPPort = 70000 }, "smtp_port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubSettingsRepo{}
			svc := NewSettingsService(repo, zerolog.Nop())

			req := valid()
			tt.mutate(req)

			_, err := svc.UpdateSettings(context.Background(), req)

			var validationErr *models.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("error = %v, want *models.ValidationError", err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("field = %q, want %q", validationErr.Field, tt.field)
			}
			if repo.settings != nil {
				t.Error("invalid settings must not be saved")
			}
		})
	}
}

func TestUpdateSettings_SaveFailure(t *testing.T) {
	svc := NewSettingsService(&stubSettingsRepo{saveErr: errors.New("connection reset")}, zerolog.Nop())

	_, err := svc.UpdateSettings(context.Background(), &models.UpdateSettingsRequest{
		CronTime: "02:00", CronFrequency: "daily", InactivityDays: 7,
	})

	var persistErr *models.PersistenceError
	if !errors.As(err, &persistErr) {
		t.Errorf("error = %v, want *models.PersistenceError", err)
	}
}
