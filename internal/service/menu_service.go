package service

import (
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
)

// MenuService resolves the navigation items visible to a role.
type MenuService struct {
	items  []models.MenuItem
	logger *zap.Logger
}

// NewMenuService builds a menu service over the given item list. A nil list
// falls back to the default navigation.
func NewMenuService(items []models.MenuItem, logger *zap.Logger) *MenuService {
	if items == nil {
		items = models.Navigation
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuService{items: items, logger: logger}
}

// VisibleItems returns the subset of navigation items the role may see, in
// configuration order. An unknown role sees nothing.
func (s *MenuService) VisibleItems(role models.UserRole) []models.MenuItem {
	visible := make([]models.MenuItem, 0, len(s.items))
	for _, item := range s.items {
		if item.VisibleTo(role) {
			visible = append(visible, item)
		}
	}
	if !role.Known() {
		s.logger.Debug("navigation resolved for unknown role")
	}
	return visible
}
