package routeaccess

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bigkaa/riskdesk/internal/domain/rbac"
)

func TestParseTreeYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "битый yaml", yaml: "version: [1"},
		{name: "версия", yaml: "version: 2\nroutes:\n  - path: home\n"},
		{name: "нет маршрутов", yaml: "version: 1\n"},
		{name: "пустой path", yaml: "version: 1\nroutes:\n  - label: x\n"},
		{name: "неизвестная роль", yaml: "version: 1\nroutes:\n  - path: home\n    allowed_roles: [ROOT]\n"},
		{name: "неизвестная роль во вложенном", yaml: "version: 1\nroutes:\n  - path: a\n    subpaths:\n      - path: b\n        allowed_roles: [GUEST]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTreeYAML([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalidTree) {
				t.Errorf("ожидалась ErrInvalidTree, получено %v", err)
			}
		})
	}
}

func TestDefaultTree(t *testing.T) {
	tree, err := DefaultTree()
	if err != nil {
		t.Fatalf("DefaultTree: %v", err)
	}

	tests := []struct {
		path string
		role rbac.Role
		want bool
	}{
		{path: "home", role: rbac.RoleUser, want: true},
		{path: "users", role: rbac.RoleAdmin, want: true},
		{path: "users", role: rbac.RoleUser, want: false},
		{path: "users/3", role: rbac.RoleUser, want: false},
		{path: "users/status/reset", role: rbac.RoleAdmin, want: true},
		{path: "customers", role: rbac.RoleUser, want: true},
		{path: "customers/5", role: rbac.RoleUser, want: true},
		{path: "customers/5/credit-requests", role: rbac.RoleUser, want: true},
		{path: "customers/status/reset", role: rbac.RoleUser, want: true},
		{path: "credit-requests/9/assets", role: rbac.RoleAdmin, want: true},
		{path: "customer-assets/4", role: rbac.RoleUser, want: true},
		{path: "catalog/document-types", role: rbac.RoleUser, want: true},
		{path: "catalog/unknown", role: rbac.RoleAdmin, want: false},
		{path: "me", role: rbac.RoleUser, want: true},
		{path: "customers", role: rbac.Role("GUEST"), want: false},
	}

	for _, tt := range tests {
		if got := tree.CanAccess(tt.path, tt.role); got != tt.want {
			t.Errorf("CanAccess(%q, %s) = %v, хотели %v", tt.path, tt.role, got, tt.want)
		}
	}

	nav := tree.Navigation(rbac.RoleUser)
	paths := make([]string, 0, len(nav))
	for _, item := range nav {
		paths = append(paths, item.Path)
	}
	if diff := cmp.Diff([]string{"/manager/home", "/manager/customers"}, paths); diff != "" {
		t.Errorf("меню USER (-want +got):\n%s", diff)
	}
}

func TestLoadTreeOrDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	content := "version: 1\nroutes:\n  - path: reports\n    allowed_roles: [ADMIN]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tree, err := LoadTreeOrDefault(path)
	if err != nil {
		t.Fatalf("LoadTreeOrDefault: %v", err)
	}
	if !tree.CanAccess("reports", rbac.RoleAdmin) {
		t.Error("маршрут из файла не загружен")
	}

	if _, err := LoadTreeOrDefault(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("ожидалась ошибка для отсутствующего файла")
	}

	def, err := LoadTreeOrDefault("")
	if err != nil {
		t.Fatalf("LoadTreeOrDefault(\"\"): %v", err)
	}
	if !def.CanAccess("customers", rbac.RoleAdmin) {
		t.Error("встроенное дерево должно разрешать customers для ADMIN")
	}
}
