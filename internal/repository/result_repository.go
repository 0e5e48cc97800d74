package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/escolar-dev/escolar-api/internal/models"
)

// ResultRepository handles persistence for results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new repository instance.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// List returns results with pagination metadata, optionally scoped to one
// student.
func (r *ResultRepository) List(ctx context.Context, studentID string, page, size int) ([]models.Result, int, error) {
	base := "FROM results WHERE 1=1"
	var args []interface{}

	if studentID != "" {
		base += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, studentID)
	}

	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, score, exam_id, assignment_id, student_id, created_at, updated_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", base, size, offset)
	var results []models.Result
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}

	return results, total, nil
}

// ListDetailsByStudent joins results with their exam or assignment title for
// report cards.
func (r *ResultRepository) ListDetailsByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error) {
	const query = `SELECT r.id, r.score, r.exam_id, r.assignment_id, r.student_id, r.created_at, r.updated_at,
			COALESCE(e.title, a.title, '') AS title,
			s.surname || ', ' || s.name AS student_name
		FROM results r
		LEFT JOIN exams e ON e.id = r.exam_id
		LEFT JOIN assignments a ON a.id = r.assignment_id
		JOIN students s ON s.id = r.student_id
		WHERE r.student_id = $1
		ORDER BY r.created_at`
	var details []models.ResultDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID); err != nil {
		return nil, fmt.Errorf("list result details: %w", err)
	}
	return details, nil
}

// FindByID returns a result by id.
func (r *ResultRepository) FindByID(ctx context.Context, id string) (*models.Result, error) {
	const query = `SELECT id, score, exam_id, assignment_id, student_id, created_at, updated_at FROM results WHERE id = $1`
	var result models.Result
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		return nil, err
	}
	return &result, nil
}

// Create persists a new result. Exam, assignment and student references are
// enforced by the store's foreign keys.
func (r *ResultRepository) Create(ctx context.Context, result *models.Result) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	result.CreatedAt = now
	result.UpdatedAt = now

	const query = `INSERT INTO results (id, score, exam_id, assignment_id, student_id, created_at, updated_at)
		VALUES (:id, :score, :exam_id, :assignment_id, :student_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// Update modifies a result keyed by its id.
func (r *ResultRepository) Update(ctx context.Context, result *models.Result) error {
	result.UpdatedAt = time.Now().UTC()
	const query = `UPDATE results SET score = :score, exam_id = :exam_id, assignment_id = :assignment_id, student_id = :student_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	return nil
}

// Delete removes a result record.
func (r *ResultRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM results WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return nil
}
