package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/service"
	"github.com/escolar-dev/escolar-api/pkg/response"
)

type assignmentRepoStub struct {
	assignments map[string]*models.Assignment
	lastFilter  models.AssignmentFilter
	listCalled  bool
	createErr   error
	resultCount int
}

func newAssignmentRepoStub() *assignmentRepoStub {
	return &assignmentRepoStub{assignments: map[string]*models.Assignment{}}
}

func (s *assignmentRepoStub) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	s.listCalled = true
	s.lastFilter = filter
	return []models.Assignment{{ID: "assignment-1", Title: "Fractions worksheet"}}, 1, nil
}

func (s *assignmentRepoStub) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	assignment, ok := s.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *assignment
	return &copied, nil
}

func (s *assignmentRepoStub) Create(ctx context.Context, assignment *models.Assignment) error {
	if s.createErr != nil {
		return s.createErr
	}
	assignment.ID = "assignment-1"
	s.assignments[assignment.ID] = assignment
	return nil
}

func (s *assignmentRepoStub) Update(ctx context.Context, assignment *models.Assignment) error {
	s.assignments[assignment.ID] = assignment
	return nil
}

func (s *assignmentRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.assignments, id)
	return nil
}

func (s *assignmentRepoStub) CountResults(ctx context.Context, id string) (int, error) {
	return s.resultCount, nil
}

func newAssignmentHandler(repo *assignmentRepoStub) *AssignmentHandler {
	svc := service.NewAssignmentService(repo, nil, nil, zap.NewNop())
	runner := NewFormRunner(nil, time.Second, nil, nil, zap.NewNop())
	return NewAssignmentHandler(svc, runner)
}

func TestAssignmentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newAssignmentRepoStub()
	handler := newAssignmentHandler(repo)

	body := `{"title":"Fractions worksheet","start_date":"2026-09-01","due_date":"2026-09-08","lesson_id":"6b5a4c3d-2e1f-4a9b-8c7d-6e5f4a3b2c1d"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "assignment-1", data["id"])
	assert.Equal(t, "2026-09-08", data["due_date"])
}

func TestAssignmentHandlerCreateMissingField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newAssignmentRepoStub()
	handler := newAssignmentHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewBufferString(`{"title":"Fractions worksheet"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Equal(t, "is required", envelope.Error.Fields["due_date"])
	assert.Empty(t, repo.assignments)
}

func TestAssignmentHandlerCreateMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAssignmentHandler(newAssignmentRepoStub())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewBufferString(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerCreateMissingLesson(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newAssignmentRepoStub()
	repo.createErr = &pq.Error{Code: "23503"}
	handler := newAssignmentHandler(repo)

	body := `{"title":"Fractions worksheet","start_date":"2026-09-01","due_date":"2026-09-08","lesson_id":"6b5a4c3d-2e1f-4a9b-8c7d-6e5f4a3b2c1d"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
}

func TestAssignmentHandlerListParsesDateFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newAssignmentRepoStub()
	handler := newAssignmentHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/assignments?lesson_id=lesson-1&due_before=2026-09-30&page=2&limit=10", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, repo.listCalled)
	assert.Equal(t, "lesson-1", repo.lastFilter.LessonID)
	assert.Equal(t, 2, repo.lastFilter.Page)
	assert.Equal(t, 10, repo.lastFilter.PageSize)
	require.NotNil(t, repo.lastFilter.DueBefore)
	assert.Equal(t, "2026-09-30", repo.lastFilter.DueBefore.String())
	assert.Nil(t, repo.lastFilter.DueAfter)
}

func TestAssignmentHandlerUpdateUnknownID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newAssignmentHandler(newAssignmentRepoStub())

	body := `{"title":"Fractions worksheet","start_date":"2026-09-01","due_date":"2026-09-08","lesson_id":"6b5a4c3d-2e1f-4a9b-8c7d-6e5f4a3b2c1d"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/assignments/missing", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Update(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignmentHandlerDeleteBlockedByResults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newAssignmentRepoStub()
	repo.assignments["assignment-1"] = &models.Assignment{ID: "assignment-1", Title: "Fractions worksheet"}
	repo.resultCount = 2
	handler := newAssignmentHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/assignments/assignment-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "assignment-1"}}

	handler.Delete(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, repo.assignments, "assignment-1")
}
