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

type teacherRepository interface {
	List(ctx context.Context, filter models.PersonFilter) ([]models.Teacher, int, error)
	Options(ctx context.Context) ([]models.Option, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
	CountLessons(ctx context.Context, id string) (int, error)
}

// TeacherDraft captures fields for creating or updating a teacher.
type TeacherDraft struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"omitempty,email"`
	Name     string `json:"name" validate:"required"`
	Surname  string `json:"surname" validate:"required"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Address  string `json:"address" validate:"required"`
}

// TeacherService handles teacher domain workflows.
type TeacherService struct {
	repo      teacherRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService creates a new teacher service.
func NewTeacherService(repo teacherRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated teachers, served from cache when possible.
func (s *TeacherService) List(ctx context.Context, filter models.PersonFilter) ([]models.Teacher, *models.Pagination, error) {
	type cached struct {
		Teachers []models.Teacher `json:"teachers"`
		Total    int              `json:"total"`
	}

	key := listKey("teacher", filter.Page, filter.PageSize, filter.Search, filter.SortBy, filter.SortOrder)
	var entry cached
	if hit, _ := s.cache.Get(ctx, key, &entry); hit {
		return entry.Teachers, paginate(filter.Page, filter.PageSize, entry.Total), nil
	}

	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}

	_ = s.cache.Set(ctx, key, cached{Teachers: teachers, Total: total}, 0)
	return teachers, paginate(filter.Page, filter.PageSize, total), nil
}

// Options returns the id/label pairs for supervisor selection fields.
func (s *TeacherService) Options(ctx context.Context) ([]models.Option, error) {
	options, err := s.repo.Options(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher options")
	}
	return options, nil
}

// Get returns a teacher by identifier.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create adds a new teacher ensuring username uniqueness.
func (s *TeacherService) Create(ctx context.Context, draft TeacherDraft) (*models.Teacher, error) {
	draft.Username = strings.TrimSpace(draft.Username)
	if err := validation.CheckErr(s.validator, draft, "teacher"); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, draft.Username, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	teacher := &models.Teacher{
		Username: draft.Username,
		Email:    draft.Email,
		Name:     draft.Name,
		Surname:  draft.Surname,
		Phone:    draft.Phone,
		Address:  draft.Address,
		Active:   true,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, writeError(err, "teacher")
	}

	_ = s.cache.Invalidate(ctx, listPattern("teacher"))
	return teacher, nil
}

// Update modifies an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id string, draft TeacherDraft) (*models.Teacher, error) {
	draft.Username = strings.TrimSpace(draft.Username)
	if err := validation.CheckErr(s.validator, draft, "teacher"); err != nil {
		return nil, err
	}

	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, draft.Username, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	teacher.Username = draft.Username
	teacher.Email = draft.Email
	teacher.Name = draft.Name
	teacher.Surname = draft.Surname
	teacher.Phone = draft.Phone
	teacher.Address = draft.Address

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, writeError(err, "teacher")
	}

	_ = s.cache.Invalidate(ctx, listPattern("teacher"))
	return teacher, nil
}

// Delete removes a teacher when no lessons reference them.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountLessons(ctx, teacher.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher lessons")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "teacher is assigned to lessons")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}

	_ = s.cache.Invalidate(ctx, listPattern("teacher"))
	return nil
}
