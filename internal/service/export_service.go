package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vewake/tle-assignment/internal/models"
	"github.com/vewake/tle-assignment/internal/storage"
	"github.com/xuri/excelize/v2"
)

var ErrStorageDisabled = errors.New("export storage is not configured")

const (
	exportSheet       = "Students"
	XLSXContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportTimeLayout  = "2006-01-02 15:04:05"
	archiveNameLayout = "20060102T150405Z"
)

var exportHeader = []interface{}{
	"Name", "Email", "Phone", "Codeforces Handle", "Current Rating",
	"Max Rating", "Active", "Email Reminders", "Reminder Count", "Last Updated",
}

type ExportService interface {
	ExportStudents(ctx context.Context) ([]byte, error)
	ArchiveExport(ctx context.Context) (*models.ArchiveResponse, error)
}

type exportService struct {
	students StudentService
	storage  storage.ObjectStorage
	logger   zerolog.Logger
	now      func() time.Time
}

// NewExportService builds the exporter. objectStorage may be nil, in which
// case archiving reports ErrStorageDisabled.
func NewExportService(students StudentService, objectStorage storage.ObjectStorage, logger zerolog.Logger) ExportService {
	return &exportService{
		students: students,
		storage:  objectStorage,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *exportService) ExportStudents(ctx context.Context) ([]byte, error) {
	students, err := s.students.GetAllStudents(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, st := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			st.Name,
			st.Email,
			st.Phone,
			st.CodeforcesHandle,
			st.CurrentRating,
			st.MaxRating,
			yesNo(st.IsActive),
			yesNo(st.EmailRemindersEnabled),
			st.ReminderCount,
			st.LastUpdated.UTC().Format(exportTimeLayout),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *exportService) ArchiveExport(ctx context.Context) (*models.ArchiveResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	data, err := s.ExportStudents(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := fmt.Sprintf("exports/students-%s.xlsx", now.Format(archiveNameLayout))

	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), XLSXContentType); err != nil {
		return nil, fmt.Errorf("failed to archive export: %w", err)
	}

	s.logger.Info().Str("key", key).Int("bytes", len(data)).Msg("Student export archived")

	return &models.ArchiveResponse{
		Bucket:    s.storage.Bucket(),
		ObjectKey: key,
		Size:      int64(len(data)),
		CreatedAt: now,
	}, nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
