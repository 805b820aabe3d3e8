// Пакет routeaccess — доступ к маршрутам панели по ролям.
// Дерево маршрутов статично (YAML), резолвер является чистой функцией (path, tree).
package routeaccess

import (
	"slices"
	"strings"

	"github.com/bigkaa/riskdesk/internal/domain/rbac"
)

// Route — узел дерева маршрутов.
type Route struct {
	// Path — сегмент пути; "[...]" — динамический сегмент (любое значение)
	Path         string      `yaml:"path"`
	Label        string      `yaml:"label"`
	AllowedRoles []rbac.Role `yaml:"allowed_roles"`
	Icon         string      `yaml:"icon"`
	// Navigable — показывать ли пункт в боковом меню
	Navigable bool    `yaml:"navigable"`
	Subpaths  []Route `yaml:"subpaths"`
}

// IsWildcard — динамический ли сегмент.
func (r Route) IsWildcard() bool {
	return strings.HasPrefix(r.Path, "[") && strings.HasSuffix(r.Path, "]")
}

// Segments разбивает путь по "/" и отбрасывает пустые сегменты.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AllowedRoles возвращает роли, которым доступен путь.
// На каждом уровне точное совпадение сегмента приоритетнее динамического.
// Если путь пуст или какой-то сегмент не найден, возвращается пустой набор.
func AllowedRoles(path string, routes []Route) []rbac.Role {
	segs := Segments(path)
	if len(segs) == 0 {
		return []rbac.Role{}
	}

	level := routes
	var node *Route
	for _, seg := range segs {
		node = match(seg, level)
		if node == nil {
			return []rbac.Role{}
		}
		level = node.Subpaths
	}
	return append([]rbac.Role{}, node.AllowedRoles...)
}

// CanAccess проверяет, входит ли роль в набор допустимых для пути.
func CanAccess(path string, role rbac.Role, routes []Route) bool {
	return slices.Contains(AllowedRoles(path, routes), role)
}

// match ищет узел для сегмента: сначала точное совпадение, затем первый динамический.
func match(seg string, routes []Route) *Route {
	wildcard := -1
	for i := range routes {
		if routes[i].Path == seg {
			return &routes[i]
		}
		if wildcard < 0 && routes[i].IsWildcard() {
			wildcard = i
		}
	}
	if wildcard >= 0 {
		return &routes[wildcard]
	}
	return nil
}
