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

type parentRepository interface {
	List(ctx context.Context, filter models.PersonFilter) ([]models.Parent, int, error)
	Options(ctx context.Context) ([]models.Option, error)
	FindByID(ctx context.Context, id string) (*models.Parent, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	Create(ctx context.Context, parent *models.Parent) error
	Update(ctx context.Context, parent *models.Parent) error
	Delete(ctx context.Context, id string) error
	CountStudents(ctx context.Context, id string) (int, error)
}

// ParentDraft captures fields for creating or updating a parent.
type ParentDraft struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"omitempty,email"`
	Name     string `json:"name" validate:"required"`
	Surname  string `json:"surname" validate:"required"`
	Phone    string `json:"phone" validate:"required,max=20"`
	Address  string `json:"address" validate:"required"`
}

// ParentService handles parent domain workflows.
type ParentService struct {
	repo      parentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewParentService creates a new parent service.
func NewParentService(repo parentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ParentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated parents, served from cache when possible.
func (s *ParentService) List(ctx context.Context, filter models.PersonFilter) ([]models.Parent, *models.Pagination, error) {
	type cached struct {
		Parents []models.Parent `json:"parents"`
		Total   int             `json:"total"`
	}

	key := listKey("parent", filter.Page, filter.PageSize, filter.Search, filter.SortBy, filter.SortOrder)
	var entry cached
	if hit, _ := s.cache.Get(ctx, key, &entry); hit {
		return entry.Parents, paginate(filter.Page, filter.PageSize, entry.Total), nil
	}

	parents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list parents")
	}

	_ = s.cache.Set(ctx, key, cached{Parents: parents, Total: total}, 0)
	return parents, paginate(filter.Page, filter.PageSize, total), nil
}

// Options returns the id/label pairs for parent selection fields.
func (s *ParentService) Options(ctx context.Context) ([]models.Option, error) {
	options, err := s.repo.Options(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent options")
	}
	return options, nil
}

// Get returns a parent by identifier.
func (s *ParentService) Get(ctx context.Context, id string) (*models.Parent, error) {
	parent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent")
	}
	return parent, nil
}

// Create adds a new parent ensuring username uniqueness.
func (s *ParentService) Create(ctx context.Context, draft ParentDraft) (*models.Parent, error) {
	draft.Username = strings.TrimSpace(draft.Username)
	if err := validation.CheckErr(s.validator, draft, "parent"); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, draft.Username, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check parent username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	parent := &models.Parent{
		Username: draft.Username,
		Email:    draft.Email,
		Name:     draft.Name,
		Surname:  draft.Surname,
		Phone:    draft.Phone,
		Address:  draft.Address,
	}
	if err := s.repo.Create(ctx, parent); err != nil {
		return nil, writeError(err, "parent")
	}

	_ = s.cache.Invalidate(ctx, listPattern("parent"))
	return parent, nil
}

// Update modifies an existing parent.
func (s *ParentService) Update(ctx context.Context, id string, draft ParentDraft) (*models.Parent, error) {
	draft.Username = strings.TrimSpace(draft.Username)
	if err := validation.CheckErr(s.validator, draft, "parent"); err != nil {
		return nil, err
	}

	parent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, draft.Username, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check parent username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	parent.Username = draft.Username
	parent.Email = draft.Email
	parent.Name = draft.Name
	parent.Surname = draft.Surname
	parent.Phone = draft.Phone
	parent.Address = draft.Address

	if err := s.repo.Update(ctx, parent); err != nil {
		return nil, writeError(err, "parent")
	}

	_ = s.cache.Invalidate(ctx, listPattern("parent"))
	return parent, nil
}

// Delete removes a parent when no students reference them.
func (s *ParentService) Delete(ctx context.Context, id string) error {
	parent, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountStudents(ctx, parent.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check parent students")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "parent still has linked students")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete parent")
	}

	_ = s.cache.Invalidate(ctx, listPattern("parent"))
	return nil
}
