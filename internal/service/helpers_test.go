package service

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

func fkViolation() error {
	return &pq.Error{Code: "23503", Message: "violates foreign key constraint"}
}

func uniqueViolation() error {
	return &pq.Error{Code: "23505", Message: "duplicate key value"}
}

func TestListKey(t *testing.T) {
	assert.Equal(t, "list:subject:1:20", listKey("subject", 1, 20))
	assert.Equal(t, "list:student:2:10:amira:name:asc", listKey("student", 2, 10, "amira", "name", "asc"))
}

func TestListPattern(t *testing.T) {
	assert.Equal(t, "list:subject:*", listPattern("subject"))
}

func TestPaginateClampsInputs(t *testing.T) {
	p := paginate(0, 0, 42)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 42, p.TotalCount)
}

func TestWriteErrorMapping(t *testing.T) {
	err := writeError(fkViolation(), "result")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Contains(t, err.Error(), "references a missing related record")

	err = writeError(uniqueViolation(), "subject")
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Contains(t, err.Error(), "already exists")

	err = writeError(assert.AnError, "lesson")
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}
