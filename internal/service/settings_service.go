package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
	"github.com/vewake/tle-assignment/internal/repository"
)

type SettingsService interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, req *models.UpdateSettingsRequest) (*models.Settings, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	validate     *validator.Validate
	logger       zerolog.Logger
}

func NewSettingsService(settingsRepo repository.SettingsRepository, logger zerolog.Logger) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		validate:     newValidator(),
		logger:       logger,
	}
}

func (s *settingsService) GetSettings(ctx context.Context) (*models.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if settings == nil {
		defaults := models.DefaultSettings()
		return &defaults, nil
	}

	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, req *models.UpdateSettingsRequest) (*models.Settings, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	current, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.CronTime = req.CronTime
	updated.CronFrequency = models.SyncFrequency(req.CronFrequency)
	updated.InactivityDays = req.InactivityDays
	if req.EmailEnabled != nil {
		updated.EmailEnabled = *req.EmailEnabled
	}
	updated.SMTP.Host = req.SMTPHost
	updated.SMTP.User = req.SMTPUser
	if req.SMTPPort != 0 {
		updated.SMTP.Port = req.SMTPPort
	}
	// An empty password keeps the stored one; the API never echoes it back.
	if req.SMTPPassword != "" {
		updated.SMTP.Password = req.SMTPPassword
	}
	updated.UpdatedAt = time.Now()

	if err := s.settingsRepo.Save(ctx, &updated); err != nil {
		return nil, &models.PersistenceError{Op: "save settings", Err: err}
	}

	s.logger.Info().
		Str("cron_time", updated.CronTime).
		Str("cron_frequency", updated.CronFrequency.String()).
		Int("inactivity_days", updated.InactivityDays).
		Bool("email_enabled", updated.EmailEnabled).
		Msg("Settings updated")

	return &updated, nil
}
