package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/escolar-dev/escolar-api/internal/models"
)

// AttendanceRepository is the read side for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new repository instance.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance records matching filters with pagination metadata.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	base := "FROM attendances WHERE 1=1"
	var args []interface{}

	if filter.StudentID != "" {
		base += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.LessonID != "" {
		base += fmt.Sprintf(" AND lesson_id = $%d", len(args)+1)
		args = append(args, filter.LessonID)
	}
	if filter.From != nil {
		base += fmt.Sprintf(" AND date >= $%d", len(args)+1)
		args = append(args, filter.From.Time)
	}
	if filter.To != nil {
		base += fmt.Sprintf(" AND date <= $%d", len(args)+1)
		args = append(args, filter.To.Time)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, student_id, lesson_id, date, present, created_at %s ORDER BY date DESC LIMIT %d OFFSET %d", base, size, offset)
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}

	return records, total, nil
}

// WeeklySummary aggregates present/absent counts per weekday for the
// dashboard attendance chart.
func (r *AttendanceRepository) WeeklySummary(ctx context.Context, from, to models.Date) ([]models.AttendanceDay, error) {
	const query = `SELECT TRIM(TO_CHAR(date, 'Day')) AS day,
			COUNT(*) FILTER (WHERE present) AS present,
			COUNT(*) FILTER (WHERE NOT present) AS absent
		FROM attendances
		WHERE date >= $1 AND date <= $2
		GROUP BY day, EXTRACT(ISODOW FROM date)
		ORDER BY EXTRACT(ISODOW FROM date)`
	var days []models.AttendanceDay
	if err := r.db.SelectContext(ctx, &days, query, from.Time, to.Time); err != nil {
		return nil, fmt.Errorf("weekly attendance summary: %w", err)
	}
	return days, nil
}
