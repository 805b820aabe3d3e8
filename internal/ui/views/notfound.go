// Пакет views — HTML-компоненты (templ) панели управления.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// NotFoundTitle — заголовок страницы «не найдено».
const NotFoundTitle = "Página no encontrada"

// NotFound — страница для маршрута, который не существует или недоступен роли.
// Маршрут, закрытый для роли, выглядит так же, как несуществующий.
func NotFound(path string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html><html lang="es"><head><meta charset="utf-8"><title>`+
			templ.EscapeString(NotFoundTitle)+
			`</title></head><body><main class="not-found"><h1>404</h1><p>`+
			templ.EscapeString(NotFoundTitle)+
			`</p><p><code>`+
			templ.EscapeString(path)+
			`</code></p><a href="/manager/home">Volver al inicio</a></main></body></html>`)
		return err
	})
}
