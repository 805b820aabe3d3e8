package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigkaa/riskdesk/internal/domain/rbac"
	"github.com/bigkaa/riskdesk/internal/routeaccess"
)

// routesReport — результат команды routes.
type routesReport struct {
	Path         string                `json:"path,omitempty"`
	AllowedRoles []rbac.Role           `json:"allowedRoles"`
	Role         rbac.Role             `json:"role,omitempty"`
	Allowed      *bool                 `json:"allowed,omitempty"`
	Navigation   []routeaccess.NavItem `json:"navigation,omitempty"`
}

func newRoutesCmd() *cobra.Command {
	var (
		role       string
		path       string
		routesFile string
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Показать роли, допущенные к пути, и меню роли",
		Long: `Разрешает путь (относительно /manager) по дереву маршрутов и печатает
допущенные роли. С --role дополнительно печатает решение о доступе
и боковое меню для роли.`,
		Example: `  riskdesk routes --path /customers/42
  riskdesk routes --path /users --role USER
  riskdesk routes --role ADMIN --routes-file routes.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if routesFile == "" {
				routesFile = os.Getenv("RD_ROUTES_FILE")
			}
			tree, err := routeaccess.LoadTreeOrDefault(routesFile)
			if err != nil {
				return err
			}
			return writeRoutesReport(cmd.OutOrStdout(), tree, path, role)
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "роль сотрудника (ADMIN, USER)")
	cmd.Flags().StringVar(&path, "path", "", "путь панели без префикса /manager")
	cmd.Flags().StringVar(&routesFile, "routes-file", "", "файл дерева маршрутов (по умолчанию RD_ROUTES_FILE или встроенное дерево)")
	return cmd
}

func writeRoutesReport(w io.Writer, tree routeaccess.Tree, path, roleName string) error {
	report := routesReport{Path: path, AllowedRoles: []rbac.Role{}}
	if path != "" {
		report.AllowedRoles = tree.AllowedRoles(path)
	}

	if roleName != "" {
		role, err := rbac.ParseRole(roleName)
		if err != nil {
			return err
		}
		report.Role = role
		report.Navigation = tree.Navigation(role)
		if path != "" {
			allowed := tree.CanAccess(path, role)
			report.Allowed = &allowed
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("вывод отчёта: %w", err)
	}
	return nil
}
