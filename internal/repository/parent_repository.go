package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/escolar-dev/escolar-api/internal/models"
)

// ParentRepository handles persistence for parent records.
type ParentRepository struct {
	db *sqlx.DB
}

// NewParentRepository creates a new repository instance.
func NewParentRepository(db *sqlx.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// List returns parents matching filters with pagination metadata.
func (r *ParentRepository) List(ctx context.Context, filter models.PersonFilter) ([]models.Parent, int, error) {
	base := "FROM parents WHERE 1=1"
	var args []interface{}

	if filter.Search != "" {
		base += fmt.Sprintf(" AND (LOWER(username) LIKE $%d OR LOWER(name) LIKE $%d OR LOWER(surname) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"username": true, "name": true, "surname": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "surname"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT id, username, email, name, surname, phone, address, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var parents []models.Parent
	if err := r.db.SelectContext(ctx, &parents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list parents: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count parents: %w", err)
	}

	return parents, total, nil
}

// Options returns the ordered {id, label} set for parent selection fields.
func (r *ParentRepository) Options(ctx context.Context) ([]models.Option, error) {
	const query = `SELECT id, surname || ', ' || name AS label FROM parents ORDER BY surname, name`
	var options []models.Option
	if err := r.db.SelectContext(ctx, &options, query); err != nil {
		return nil, fmt.Errorf("list parent options: %w", err)
	}
	return options, nil
}

// FindByID returns a parent by id.
func (r *ParentRepository) FindByID(ctx context.Context, id string) (*models.Parent, error) {
	const query = `SELECT id, username, email, name, surname, phone, address, created_at, updated_at FROM parents WHERE id = $1`
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, query, id); err != nil {
		return nil, err
	}
	return &parent, nil
}

// ExistsByUsername checks username uniqueness, excluding one id on update.
func (r *ParentRepository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	query := "SELECT 1 FROM parents WHERE LOWER(username) = LOWER($1)"
	args := []interface{}{username}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check parent username: %w", err)
	}
	return true, nil
}

// Create persists a new parent.
func (r *ParentRepository) Create(ctx context.Context, parent *models.Parent) error {
	if parent.ID == "" {
		parent.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	parent.CreatedAt = now
	parent.UpdatedAt = now

	const query = `INSERT INTO parents (id, username, email, name, surname, phone, address, created_at, updated_at)
		VALUES (:id, :username, :email, :name, :surname, :phone, :address, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, parent); err != nil {
		return fmt.Errorf("create parent: %w", err)
	}
	return nil
}

// Update modifies a parent keyed by its id.
func (r *ParentRepository) Update(ctx context.Context, parent *models.Parent) error {
	parent.UpdatedAt = time.Now().UTC()
	const query = `UPDATE parents SET username = :username, email = :email, name = :name, surname = :surname, phone = :phone, address = :address, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, parent); err != nil {
		return fmt.Errorf("update parent: %w", err)
	}
	return nil
}

// Delete removes a parent record.
func (r *ParentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM parents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete parent: %w", err)
	}
	return nil
}

// CountStudents returns the number of students linked to the parent.
func (r *ParentRepository) CountStudents(ctx context.Context, id string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students WHERE parent_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count parent students: %w", err)
	}
	return count, nil
}
