package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"polyalpha/pkg/errors"
)

func TestRegistryLoadAndRender(t *testing.T) {
	base := t.TempDir()
	promptDir := filepath.Join(base, "prompts")
	if err := os.MkdirAll(promptDir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}

	tplPath := filepath.Join(promptDir, "summary.tmpl")
	if err := os.WriteFile(tplPath, []byte("Market {{.Slug}}"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := os.WriteFile(filepath.Join(promptDir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write non-template: %v", err)
	}

	reg, err := NewRegistry(base)
	if err != nil {
		t.Fatalf("init registry: %v", err)
	}

	if got := reg.List(); len(got) != 1 || got[0] != "prompts/summary" {
		t.Fatalf("unexpected ids: %v", got)
	}

	rendered, err := reg.Render("prompts/summary", map[string]string{"Slug": "will-it-rain"})
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	if rendered != "Market will-it-rain" {
		t.Fatalf("unexpected render result: %s", rendered)
	}

	// Templates are parsed once; later edits on disk need a new registry.
	if err := os.WriteFile(tplPath, []byte("Changed {{.Slug}}"), 0o644); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}
	rendered, err = reg.Render("prompts/summary", map[string]string{"Slug": "x"})
	if err != nil {
		t.Fatalf("render after update: %v", err)
	}
	if rendered != "Market x" {
		t.Fatalf("expected parsed template to keep initial content, got: %s", rendered)
	}
}

func TestNewRegistryRejectsBadDir(t *testing.T) {
	if _, err := NewRegistry(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing dir")
	}

	file := filepath.Join(t.TempDir(), "file.tmpl")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := NewRegistry(file)
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got: %v", err)
	}
}

func TestRegistryParseError(t *testing.T) {
	_, err := NewRegistryFromFS(fstest.MapFS{
		"broken.tmpl": {Data: []byte("{{.Open")},
	})
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRegistryMissingKeyFails(t *testing.T) {
	reg, err := NewRegistryFromFS(fstest.MapFS{
		"p.tmpl": {Data: []byte("{{.Missing}}")},
	})
	if err != nil {
		t.Fatalf("init registry: %v", err)
	}

	if _, err := reg.Render("p", map[string]string{}); err == nil {
		t.Fatalf("expected error for missing key")
	}
	if _, err := reg.Render("nope", nil); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found for unknown template, got: %v", err)
	}
}

func TestRegistryRequire(t *testing.T) {
	reg, err := NewRegistryFromFS(fstest.MapFS{
		"prompts/a.tmpl": {Data: []byte("a")},
	})
	if err != nil {
		t.Fatalf("init registry: %v", err)
	}

	if err := reg.Require("prompts/a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = reg.Require("prompts/a", "prompts/b", "prompts/c")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("expected not found, got: %v", err)
	}
	if !strings.Contains(err.Error(), "prompts/b, prompts/c") {
		t.Fatalf("missing ids not named: %v", err)
	}
}

func TestIncHelper(t *testing.T) {
	reg, err := NewRegistryFromFS(fstest.MapFS{
		"list.tmpl": {Data: []byte("{{range $i, $v := .}}[{{inc $i}}]{{$v}} {{end}}")},
	})
	if err != nil {
		t.Fatalf("init registry: %v", err)
	}

	out, err := reg.Render("list", []string{"a", "b"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "[1]a [2]b " {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestEmbeddedPromptsLoaded(t *testing.T) {
	if err := Get().Require("prompts/comment_analysis"); err != nil {
		t.Fatalf("embedded prompt missing: %v (have %v)", err, Get().List())
	}
}
