package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/validation"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.EntityFilter) ([]models.Class, int, error)
	Options(ctx context.Context) ([]models.Option, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
	CountStudents(ctx context.Context, id string) (int, error)
}

// ClassDraft captures fields for creating or updating a class.
type ClassDraft struct {
	Name         string `json:"name" validate:"required,min=1,max=50"`
	Capacity     int    `json:"capacity" validate:"required,gte=1,lte=100"`
	Grade        int    `json:"grade" validate:"required,gte=1,lte=12"`
	SupervisorID string `json:"supervisor_id" validate:"omitempty,uuid"`
}

// ClassService handles class domain workflows.
type ClassService struct {
	repo      classRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService creates a new class service.
func NewClassService(repo classRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated classes, served from cache when possible.
func (s *ClassService) List(ctx context.Context, filter models.EntityFilter) ([]models.Class, *models.Pagination, error) {
	type cached struct {
		Classes []models.Class `json:"classes"`
		Total   int            `json:"total"`
	}

	key := listKey("class", filter.Page, filter.PageSize, filter.Search, filter.SortBy, filter.SortOrder)
	var entry cached
	if hit, _ := s.cache.Get(ctx, key, &entry); hit {
		return entry.Classes, paginate(filter.Page, filter.PageSize, entry.Total), nil
	}

	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	_ = s.cache.Set(ctx, key, cached{Classes: classes, Total: total}, 0)
	return classes, paginate(filter.Page, filter.PageSize, total), nil
}

// Options returns the id/label pairs for class selection fields.
func (s *ClassService) Options(ctx context.Context) ([]models.Option, error) {
	options, err := s.repo.Options(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class options")
	}
	return options, nil
}

// Get returns a class by identifier.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create adds a new class ensuring name uniqueness.
func (s *ClassService) Create(ctx context.Context, draft ClassDraft) (*models.Class, error) {
	if err := validation.CheckErr(s.validator, draft, "class"); err != nil {
		return nil, err
	}

	draft.Name = strings.TrimSpace(draft.Name)

	exists, err := s.repo.ExistsByName(ctx, draft.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class name already exists")
	}

	class := &models.Class{
		Name:         draft.Name,
		Capacity:     draft.Capacity,
		Grade:        draft.Grade,
		SupervisorID: draft.SupervisorID,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, writeError(err, "class")
	}

	_ = s.cache.Invalidate(ctx, listPattern("class"))
	return class, nil
}

// Update modifies an existing class.
func (s *ClassService) Update(ctx context.Context, id string, draft ClassDraft) (*models.Class, error) {
	if err := validation.CheckErr(s.validator, draft, "class"); err != nil {
		return nil, err
	}

	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	draft.Name = strings.TrimSpace(draft.Name)

	exists, err := s.repo.ExistsByName(ctx, draft.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class name already exists")
	}

	class.Name = draft.Name
	class.Capacity = draft.Capacity
	class.Grade = draft.Grade
	class.SupervisorID = draft.SupervisorID

	if err := s.repo.Update(ctx, class); err != nil {
		return nil, writeError(err, "class")
	}

	_ = s.cache.Invalidate(ctx, listPattern("class"))
	return class, nil
}

// Delete removes a class when no students are assigned to it.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	class, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountStudents(ctx, class.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class students")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "class still has students")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}

	_ = s.cache.Invalidate(ctx, listPattern("class"))
	return nil
}
