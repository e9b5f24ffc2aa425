package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
)

type SettingsRepository interface {
	// Get returns nil when settings were never saved.
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	*PostgresRepository
}

func NewSettingsRepository(db *sql.DB, logger zerolog.Logger) SettingsRepository {
	return &settingsRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	query := `
		SELECT cron_time, cron_frequency, email_enabled, inactivity_days,
			smtp_host, smtp_port, smtp_user, smtp_password, updated_at
		FROM settings
		WHERE id = 1
	`

	s := &models.Settings{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.CronTime,
		&s.CronFrequency,
		&s.EmailEnabled,
		&s.InactivityDays,
		&s.SMTP.Host,
		&s.SMTP.Port,
		&s.SMTP.User,
		&s.SMTP.Password,
		&s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (r *settingsRepository) Save(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO settings (id, cron_time, cron_frequency, email_enabled, inactivity_days,
			smtp_host, smtp_port, smtp_user, smtp_password, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			cron_time = EXCLUDED.cron_time,
			cron_frequency = EXCLUDED.cron_frequency,
			email_enabled = EXCLUDED.email_enabled,
			inactivity_days = EXCLUDED.inactivity_days,
			smtp_host = EXCLUDED.smtp_host,
			smtp_port = EXCLUDED.smtp_port,
			smtp_user = EXCLUDED.smtp_user,
			smtp_password = EXCLUDED.smtp_password,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		s.CronTime,
		s.CronFrequency,
		s.EmailEnabled,
		s.InactivityDays,
		s.SMTP.Host,
		s.SMTP.Port,
		s.SMTP.User,
		s.SMTP.Password,
		s.UpdatedAt,
	)

	return err
}
