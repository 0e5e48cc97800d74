package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/validation"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.EntityFilter) ([]models.Subject, int, error)
	Options(ctx context.Context) ([]models.Option, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
	CountLessons(ctx context.Context, id string) (int, error)
}

// SubjectDraft captures fields for creating or updating a subject.
type SubjectDraft struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// SubjectService handles subject domain workflows.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated subjects, served from cache when possible.
func (s *SubjectService) List(ctx context.Context, filter models.EntityFilter) ([]models.Subject, *models.Pagination, error) {
	type cached struct {
		Subjects []models.Subject `json:"subjects"`
		Total    int              `json:"total"`
	}

	key := listKey("subject", filter.Page, filter.PageSize, filter.Search, filter.SortBy, filter.SortOrder)
	var entry cached
	if hit, _ := s.cache.Get(ctx, key, &entry); hit {
		return entry.Subjects, paginate(filter.Page, filter.PageSize, entry.Total), nil
	}

	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	_ = s.cache.Set(ctx, key, cached{Subjects: subjects, Total: total}, 0)
	return subjects, paginate(filter.Page, filter.PageSize, total), nil
}

// Options returns the id/label pairs for subject selection fields.
func (s *SubjectService) Options(ctx context.Context) ([]models.Option, error) {
	options, err := s.repo.Options(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject options")
	}
	return options, nil
}

// Get returns a subject by identifier.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create adds a new subject ensuring name uniqueness.
func (s *SubjectService) Create(ctx context.Context, draft SubjectDraft) (*models.Subject, error) {
	if err := validation.CheckErr(s.validator, draft, "subject"); err != nil {
		return nil, err
	}

	draft.Name = strings.TrimSpace(draft.Name)

	exists, err := s.repo.ExistsByName(ctx, draft.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject name already exists")
	}

	subject := &models.Subject{Name: draft.Name}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, writeError(err, "subject")
	}

	_ = s.cache.Invalidate(ctx, listPattern("subject"))
	return subject, nil
}

// Update modifies an existing subject. Updating unchanged fields is a no-op
// on the record's content.
func (s *SubjectService) Update(ctx context.Context, id string, draft SubjectDraft) (*models.Subject, error) {
	if err := validation.CheckErr(s.validator, draft, "subject"); err != nil {
		return nil, err
	}

	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	draft.Name = strings.TrimSpace(draft.Name)

	exists, err := s.repo.ExistsByName(ctx, draft.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject name already exists")
	}

	subject.Name = draft.Name
	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, writeError(err, "subject")
	}

	_ = s.cache.Invalidate(ctx, listPattern("subject"))
	return subject, nil
}

// Delete removes a subject when no lessons reference it.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	subject, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountLessons(ctx, subject.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject lessons")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "subject is referenced by lessons")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}

	_ = s.cache.Invalidate(ctx, listPattern("subject"))
	return nil
}
