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

type studentRepository interface {
	List(ctx context.Context, filter models.PersonFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	CountBySex(ctx context.Context) ([]models.SexCount, error)
}

// StudentDraft captures fields for creating or updating a student.
type StudentDraft struct {
	Username string      `json:"username" validate:"required,min=3,max=20"`
	Email    string      `json:"email" validate:"omitempty,email"`
	Name     string      `json:"name" validate:"required"`
	Surname  string      `json:"surname" validate:"required"`
	Phone    string      `json:"phone" validate:"omitempty,max=20"`
	Address  string      `json:"address" validate:"required"`
	Birthday models.Date `json:"birthday" validate:"required"`
	Sex      string      `json:"sex" validate:"required,oneof=MALE FEMALE"`
	ClassID  string      `json:"class_id" validate:"required,uuid"`
	ParentID string      `json:"parent_id" validate:"required,uuid"`
}

// StudentService handles student domain workflows.
type StudentService struct {
	repo      studentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService creates a new student service.
func NewStudentService(repo studentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated students, served from cache when possible.
func (s *StudentService) List(ctx context.Context, filter models.PersonFilter) ([]models.Student, *models.Pagination, error) {
	type cached struct {
		Students []models.Student `json:"students"`
		Total    int              `json:"total"`
	}

	key := listKey("student", filter.Page, filter.PageSize, filter.Search, filter.SortBy, filter.SortOrder)
	var entry cached
	if hit, _ := s.cache.Get(ctx, key, &entry); hit {
		return entry.Students, paginate(filter.Page, filter.PageSize, entry.Total), nil
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	_ = s.cache.Set(ctx, key, cached{Students: students, Total: total}, 0)
	return students, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns a student by identifier.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create adds a new student ensuring username uniqueness. Missing class or
// parent references surface as conflicts.
func (s *StudentService) Create(ctx context.Context, draft StudentDraft) (*models.Student, error) {
	draft.Username = strings.TrimSpace(draft.Username)
	if err := validation.CheckErr(s.validator, draft, "student"); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, draft.Username, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	student := &models.Student{
		Username: draft.Username,
		Email:    draft.Email,
		Name:     draft.Name,
		Surname:  draft.Surname,
		Phone:    draft.Phone,
		Address:  draft.Address,
		Birthday: draft.Birthday,
		Sex:      models.Sex(draft.Sex),
		ClassID:  draft.ClassID,
		ParentID: draft.ParentID,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, writeError(err, "student")
	}

	_ = s.cache.Invalidate(ctx, listPattern("student"))
	return student, nil
}

// Update modifies an existing student.
func (s *StudentService) Update(ctx context.Context, id string, draft StudentDraft) (*models.Student, error) {
	draft.Username = strings.TrimSpace(draft.Username)
	if err := validation.CheckErr(s.validator, draft, "student"); err != nil {
		return nil, err
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, draft.Username, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student username")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	}

	student.Username = draft.Username
	student.Email = draft.Email
	student.Name = draft.Name
	student.Surname = draft.Surname
	student.Phone = draft.Phone
	student.Address = draft.Address
	student.Birthday = draft.Birthday
	student.Sex = models.Sex(draft.Sex)
	student.ClassID = draft.ClassID
	student.ParentID = draft.ParentID

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, writeError(err, "student")
	}

	_ = s.cache.Invalidate(ctx, listPattern("student"))
	return student, nil
}

// Delete removes a student record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	_ = s.cache.Invalidate(ctx, listPattern("student"))
	return nil
}

// CountBySex returns the student sex distribution for the dashboard chart.
func (s *StudentService) CountBySex(ctx context.Context) ([]models.SexCount, error) {
	counts, err := s.repo.CountBySex(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students by sex")
	}
	return counts, nil
}
