package routeaccess

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bigkaa/riskdesk/internal/domain/rbac"
)

// ErrInvalidTree — дерево маршрутов не прошло проверку.
var ErrInvalidTree = errors.New("routeaccess: некорректное дерево маршрутов")

// treeVersion — поддерживаемая версия формата.
const treeVersion = 1

//go:embed routes.yaml
var defaultTreeYAML []byte

// Tree — дерево маршрутов панели.
type Tree struct {
	Version int     `yaml:"version"`
	Routes  []Route `yaml:"routes"`
}

// AllowedRoles — см. пакетную функцию AllowedRoles.
func (t Tree) AllowedRoles(path string) []rbac.Role {
	return AllowedRoles(path, t.Routes)
}

// CanAccess — см. пакетную функцию CanAccess.
func (t Tree) CanAccess(path string, role rbac.Role) bool {
	return CanAccess(path, role, t.Routes)
}

// Navigation — см. пакетную функцию Navigation.
func (t Tree) Navigation(role rbac.Role) []NavItem {
	return Navigation(role, t.Routes)
}

// ParseTreeYAML разбирает и проверяет дерево маршрутов.
func ParseTreeYAML(b []byte) (Tree, error) {
	var t Tree
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Tree{}, fmt.Errorf("%w: %v", ErrInvalidTree, err)
	}
	if t.Version != treeVersion {
		return Tree{}, fmt.Errorf("%w: неподдерживаемая версия %d", ErrInvalidTree, t.Version)
	}
	if len(t.Routes) == 0 {
		return Tree{}, fmt.Errorf("%w: нет маршрутов", ErrInvalidTree)
	}
	if err := validateRoutes(t.Routes, ""); err != nil {
		return Tree{}, err
	}
	return t, nil
}

// LoadTree читает дерево маршрутов из файла.
func LoadTree(path string) (Tree, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Tree{}, fmt.Errorf("чтение дерева маршрутов %s: %w", path, err)
	}
	return ParseTreeYAML(b)
}

// DefaultTree возвращает встроенное дерево маршрутов.
func DefaultTree() (Tree, error) {
	return ParseTreeYAML(defaultTreeYAML)
}

// LoadTreeOrDefault читает дерево из файла, а при пустом пути возвращает встроенное.
func LoadTreeOrDefault(path string) (Tree, error) {
	if path == "" {
		return DefaultTree()
	}
	return LoadTree(path)
}

func validateRoutes(routes []Route, parent string) error {
	for _, r := range routes {
		if r.Path == "" {
			return fmt.Errorf("%w: пустой path в %q", ErrInvalidTree, "/"+parent)
		}
		full := parent + "/" + r.Path
		for _, role := range r.AllowedRoles {
			if !rbac.IsValidRole(role) {
				return fmt.Errorf("%w: неизвестная роль %q в %s", ErrInvalidTree, role, full)
			}
		}
		if err := validateRoutes(r.Subpaths, full); err != nil {
			return err
		}
	}
	return nil
}
