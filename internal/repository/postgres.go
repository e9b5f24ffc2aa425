package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPostgresRepository(db *sql.DB, logger zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

// translateUniqueViolation maps unique constraint failures on the students
// table to the domain conflict errors.
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}

	switch pqErr.Constraint {
	case "students_email_key":
		return models.ErrEmailTaken
	case "students_codeforces_handle_key":
		return models.ErrHandleTaken
	default:
		return err
	}
}
