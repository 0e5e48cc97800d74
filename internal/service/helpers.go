package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/repository"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func paginate(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// listKey builds the cache key for a list query. Write paths invalidate with
// the "list:<entity>:*" pattern.
func listKey(entity string, page, size int, extra ...string) string {
	key := fmt.Sprintf("list:%s:%d:%d", entity, page, size)
	if len(extra) > 0 {
		key += ":" + strings.Join(extra, ":")
	}
	return key
}

func listPattern(entity string) string {
	return fmt.Sprintf("list:%s:*", entity)
}

// writeError maps persistence failures from a mutation into the error
// taxonomy. Referential failures surface as conflicts rather than internals
// so the caller sees an actionable outcome.
func writeError(err error, what string) error {
	switch {
	case repository.IsForeignKeyViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("%s references a missing related record", what))
	case repository.IsUniqueViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("%s already exists", what))
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to save %s", what))
	}
}
