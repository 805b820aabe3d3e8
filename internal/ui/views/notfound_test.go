package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNotFound_EscapesPath(t *testing.T) {
	var buf bytes.Buffer
	if err := NotFound(`/manager/<script>`).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()

	if strings.Contains(html, "<script>") {
		t.Error("путь должен экранироваться")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("экранированный путь не найден в %q", html)
	}
	if !strings.Contains(html, NotFoundTitle) {
		t.Error("заголовок страницы не найден")
	}
}
