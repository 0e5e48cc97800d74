package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/validation"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
	CountResults(ctx context.Context, id string) (int, error)
}

// AssignmentDraft captures fields for creating or updating an assignment.
// A due date earlier than the start date is accepted as stored data; date
// ordering is a display concern, not a validity rule.
type AssignmentDraft struct {
	Title     string      `json:"title" validate:"required,min=1,max=200"`
	StartDate models.Date `json:"start_date" validate:"required"`
	DueDate   models.Date `json:"due_date" validate:"required"`
	LessonID  string      `json:"lesson_id" validate:"required,uuid"`
}

// AssignmentService handles assignment domain workflows.
type AssignmentService struct {
	repo      assignmentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(repo assignmentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated assignments, served from cache when possible.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	type cached struct {
		Assignments []models.Assignment `json:"assignments"`
		Total       int                 `json:"total"`
	}

	extra := []string{filter.LessonID, filter.Search, filter.SortBy, filter.SortOrder}
	if filter.DueAfter != nil {
		extra = append(extra, filter.DueAfter.String())
	}
	if filter.DueBefore != nil {
		extra = append(extra, filter.DueBefore.String())
	}

	key := listKey("assignment", filter.Page, filter.PageSize, extra...)
	var entry cached
	if hit, _ := s.cache.Get(ctx, key, &entry); hit {
		return entry.Assignments, paginate(filter.Page, filter.PageSize, entry.Total), nil
	}

	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	_ = s.cache.Set(ctx, key, cached{Assignments: assignments, Total: total}, 0)
	return assignments, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns an assignment by identifier.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// Create adds a new assignment. A missing lesson reference surfaces as a
// conflict.
func (s *AssignmentService) Create(ctx context.Context, draft AssignmentDraft) (*models.Assignment, error) {
	if err := validation.CheckErr(s.validator, draft, "assignment"); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		Title:     draft.Title,
		StartDate: draft.StartDate,
		DueDate:   draft.DueDate,
		LessonID:  draft.LessonID,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, writeError(err, "assignment")
	}

	_ = s.cache.Invalidate(ctx, listPattern("assignment"))
	return assignment, nil
}

// Update modifies an existing assignment. Submitting unchanged fields leaves
// the record intact apart from the update timestamp.
func (s *AssignmentService) Update(ctx context.Context, id string, draft AssignmentDraft) (*models.Assignment, error) {
	if err := validation.CheckErr(s.validator, draft, "assignment"); err != nil {
		return nil, err
	}

	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	assignment.Title = draft.Title
	assignment.StartDate = draft.StartDate
	assignment.DueDate = draft.DueDate
	assignment.LessonID = draft.LessonID

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, writeError(err, "assignment")
	}

	_ = s.cache.Invalidate(ctx, listPattern("assignment"))
	return assignment, nil
}

// Delete removes an assignment when no results reference it.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountResults(ctx, assignment.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment results")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "assignment has recorded results")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}

	_ = s.cache.Invalidate(ctx, listPattern("assignment"))
	return nil
}
