// Точка входа riskdesk — панель сотрудников системы кредитного риска.
// Команды:
//
//	riskdesk serve   — HTTP-сервер панели (по умолчанию)
//	riskdesk routes  — проверка доступа роли к пути по дереву маршрутов
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bigkaa/riskdesk/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "riskdesk",
		Short:         "Панель сотрудников системы кредитного риска",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(newServeCmd(), newRoutesCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}
