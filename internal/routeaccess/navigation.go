package routeaccess

import (
	"slices"

	"github.com/bigkaa/riskdesk/internal/domain/rbac"
)

// NavItem — пункт бокового меню.
type NavItem struct {
	Path     string    `json:"path"`
	Label    string    `json:"label"`
	Icon     string    `json:"icon,omitempty"`
	Children []NavItem `json:"children,omitempty"`
}

// Navigation строит боковое меню для роли: навигационные маршруты верхнего
// уровня, доступные роли, с доступными навигационными подпунктами.
// Динамические сегменты в меню не попадают.
func Navigation(role rbac.Role, routes []Route) []NavItem {
	items := navigation(role, routes, basePath)
	if items == nil {
		return []NavItem{}
	}
	return items
}

// basePath — префикс защищённых маршрутов панели.
const basePath = "/manager"

func navigation(role rbac.Role, routes []Route, prefix string) []NavItem {
	items := []NavItem{}
	for _, r := range routes {
		if !r.Navigable || r.IsWildcard() || !slices.Contains(r.AllowedRoles, role) {
			continue
		}
		path := prefix + "/" + r.Path
		items = append(items, NavItem{
			Path:     path,
			Label:    r.Label,
			Icon:     r.Icon,
			Children: navigation(role, r.Subpaths, path),
		})
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
