package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
)

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	GetByHandle(ctx context.Context, handle string) (*models.Student, error)
	ListSummaries(ctx context.Context) ([]models.StudentSummary, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

type studentRepository struct {
	*PostgresRepository
}

func NewStudentRepository(db *sql.DB, logger zerolog.Logger) StudentRepository {
	return &studentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const studentColumns = `
	id, name, email, phone, codeforces_handle, current_rating, max_rating,
	last_updated, email_reminders_enabled, reminder_count, is_active,
	codeforces_data, created_at, updated_at`

const summaryColumns = `
	id, name, email, phone, codeforces_handle, current_rating, max_rating,
	last_updated, email_reminders_enabled, reminder_count, is_active`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row rowScanner) (*models.Student, error) {
	student := &models.Student{}
	err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Phone,
		&student.CodeforcesHandle,
		&student.CurrentRating,
		&student.MaxRating,
		&student.LastUpdated,
		&student.EmailRemindersEnabled,
		&student.ReminderCount,
		&student.IsActive,
		&student.CodeforcesData,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (` + studentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.Name,
		student.Email,
		student.Phone,
		student.CodeforcesHandle,
		student.CurrentRating,
		student.MaxRating,
		student.LastUpdated,
		student.EmailRemindersEnabled,
		student.ReminderCount,
		student.IsActive,
		student.CodeforcesData,
		student.CreatedAt,
		student.UpdatedAt,
	)

	return translateUniqueViolation(err)
}

func (r *studentRepository) getOne(ctx context.Context, where string, arg string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE ` + where

	student, err := scanStudent(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	return student, err
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *studentRepository) GetByHandle(ctx context.Context, handle string) (*models.Student, error) {
	return r.getOne(ctx, "LOWER(codeforces_handle) = LOWER($1)", handle)
}

func (r *studentRepository) ListSummaries(ctx context.Context) ([]models.StudentSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM students ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]models.StudentSummary, 0)
	for rows.Next() {
		var s models.StudentSummary
		err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Email,
			&s.Phone,
			&s.CodeforcesHandle,
			&s.CurrentRating,
			&s.MaxRating,
			&s.LastUpdated,
			&s.EmailRemindersEnabled,
			&s.ReminderCount,
			&s.IsActive,
		)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}

// ListAll returns full records in a stable order so that sync passes visit
// students reproducibly.
func (r *studentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *student)
	}

	return students, rows.Err()
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students
		SET name = $1, email = $2, phone = $3, codeforces_handle = $4,
			current_rating = $5, max_rating = $6, last_updated = $7,
			email_reminders_enabled = $8, reminder_count = $9, is_active = $10,
			codeforces_data = $11, updated_at = $12
		WHERE id = $13
	`

	res, err := r.db.ExecContext(ctx, query,
		student.Name,
		student.Email,
		student.Phone,
		student.CodeforcesHandle,
		student.CurrentRating,
		student.MaxRating,
		student.LastUpdated,
		student.EmailRemindersEnabled,
		student.ReminderCount,
		student.IsActive,
		student.CodeforcesData,
		student.UpdatedAt,
		student.ID,
	)
	if err != nil {
		return translateUniqueViolation(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		r.logger.Debug().Str("student_id", student.ID).Msg("Update matched no rows")
		return models.ErrStudentNotFound
	}

	return nil
}

func (r *studentRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
