package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/validation"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type resultRepository interface {
	List(ctx context.Context, studentID string, page, size int) ([]models.Result, int, error)
	ListDetailsByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error)
	FindByID(ctx context.Context, id string) (*models.Result, error)
	Create(ctx context.Context, result *models.Result) error
	Update(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, id string) error
}

// ResultDraft captures fields for recording a score. Exactly one of ExamID
// and AssignmentID must be set.
type ResultDraft struct {
	Score        int     `json:"score" validate:"gte=0,lte=100"`
	ExamID       *string `json:"exam_id" validate:"omitempty,uuid"`
	AssignmentID *string `json:"assignment_id" validate:"omitempty,uuid"`
	StudentID    string  `json:"student_id" validate:"required,uuid"`
}

// ResultService handles score recording workflows.
type ResultService struct {
	repo      resultRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResultService creates a new result service.
func NewResultService(repo resultRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{repo: repo, cache: cache, validator: validate, logger: logger}
}

func (s *ResultService) checkDraft(draft ResultDraft) error {
	if err := validation.CheckErr(s.validator, draft, "result"); err != nil {
		return err
	}
	hasExam := draft.ExamID != nil && *draft.ExamID != ""
	hasAssignment := draft.AssignmentID != nil && *draft.AssignmentID != ""
	if hasExam == hasAssignment {
		return appErrors.Validation("invalid result payload", map[string]string{
			"exam_id":       "exactly one of exam_id and assignment_id must be set",
			"assignment_id": "exactly one of exam_id and assignment_id must be set",
		})
	}
	return nil
}

// List returns paginated results, optionally scoped to one student.
func (s *ResultService) List(ctx context.Context, studentID string, page, size int) ([]models.Result, *models.Pagination, error) {
	results, total, err := s.repo.List(ctx, studentID, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}
	return results, paginate(page, size, total), nil
}

// Get returns a result by identifier.
func (s *ResultService) Get(ctx context.Context, id string) (*models.Result, error) {
	result, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	return result, nil
}

// Create records a new score. Missing exam, assignment or student references
// surface as conflicts.
func (s *ResultService) Create(ctx context.Context, draft ResultDraft) (*models.Result, error) {
	if err := s.checkDraft(draft); err != nil {
		return nil, err
	}

	result := &models.Result{
		Score:        draft.Score,
		ExamID:       draft.ExamID,
		AssignmentID: draft.AssignmentID,
		StudentID:    draft.StudentID,
	}
	if err := s.repo.Create(ctx, result); err != nil {
		return nil, writeError(err, "result")
	}

	_ = s.cache.Invalidate(ctx, listPattern("result"))
	return result, nil
}

// Update modifies an existing result.
func (s *ResultService) Update(ctx context.Context, id string, draft ResultDraft) (*models.Result, error) {
	if err := s.checkDraft(draft); err != nil {
		return nil, err
	}

	result, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result.Score = draft.Score
	result.ExamID = draft.ExamID
	result.AssignmentID = draft.AssignmentID
	result.StudentID = draft.StudentID

	if err := s.repo.Update(ctx, result); err != nil {
		return nil, writeError(err, "result")
	}

	_ = s.cache.Invalidate(ctx, listPattern("result"))
	return result, nil
}

// Delete removes a result record.
func (s *ResultService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete result")
	}

	_ = s.cache.Invalidate(ctx, listPattern("result"))
	return nil
}
