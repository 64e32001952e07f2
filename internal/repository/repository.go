package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bitcourse/backend/pkg/apperror"
)

// ListParams carries the common list contract: a sort key restricted to a
// per-entity allow-list, a non-negative offset and a bounded limit.
type ListParams struct {
	SortBy string `form:"sort_by"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

// normalize validates params against the entity's allowed sort columns and
// fills in defaults. The allow-list keeps caller input out of ORDER BY.
func (p ListParams) normalize(allowed map[string]bool, defaultSort string, defaultLimit int) (string, int, int, error) {
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = defaultSort
	}
	if !allowed[sortBy] {
		return "", 0, 0, apperror.New(400, fmt.Sprintf("cannot sort by %q", p.SortBy), apperror.ErrInvalidInput)
	}
	if p.Offset < 0 {
		return "", 0, 0, apperror.New(400, "offset must not be negative", apperror.ErrInvalidInput)
	}
	limit := p.Limit
	if limit <= 0 || limit > defaultLimit {
		limit = defaultLimit
	}
	return sortBy, p.Offset, limit, nil
}

// session hands out a context-scoped handle, failing fast when the pool was
// never initialized.
func session(ctx context.Context, db *gorm.DB) (*gorm.DB, error) {
	if db == nil {
		return nil, apperror.ErrNotInitialized
	}
	return db.WithContext(ctx), nil
}
