package templates

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"polyalpha/pkg/errors"
)

const ext = ".tmpl"

//go:embed assets/**/*.tmpl
var embeddedFS embed.FS

// Template is a parsed prompt template.
type Template struct {
	ID     string
	Source string

	parsed *template.Template
}

// Render executes the template. A key missing from data is an error.
func (t *Template) Render(data any) (string, error) {
	var sb strings.Builder
	if err := t.parsed.Execute(&sb, data); err != nil {
		return "", errors.Wrapf(err, "render template %s", t.ID)
	}
	return sb.String(), nil
}

// Registry resolves templates by id, the slash path without extension
// ("prompts/comment_analysis"). It is read-only once constructed.
type Registry struct {
	byID map[string]*Template
}

// NewRegistry parses every template below dir on disk. It lets operators
// edit prompts without a rebuild.
func NewRegistry(dir string) (*Registry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "template dir %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError("PROMPT_TEMPLATES_DIR", dir+" is not a directory")
	}
	return NewRegistryFromFS(os.DirFS(dir))
}

// NewRegistryFromFS parses every *.tmpl file in fsys.
func NewRegistryFromFS(fsys fs.FS) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Template)}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ext {
			return err
		}

		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return errors.Wrapf(err, "read template %s", p)
		}

		id := strings.TrimSuffix(p, ext)
		parsed, err := template.New(id).Funcs(funcs).Option("missingkey=error").Parse(string(src))
		if err != nil {
			return errors.Wrapf(err, "parse template %s", id)
		}

		r.byID[id] = &Template{ID: id, Source: string(src), parsed: parsed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// GetTemplate returns the template with id.
func (r *Registry) GetTemplate(id string) (*Template, error) {
	if t, ok := r.byID[id]; ok {
		return t, nil
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "template %s", id)
}

// Render executes the template with id.
func (r *Registry) Render(id string, data any) (string, error) {
	t, err := r.GetTemplate(id)
	if err != nil {
		return "", err
	}
	return t.Render(data)
}

// Require fails unless every id is present. Call it at startup for the
// templates a component cannot run without.
func (r *Registry) Require(ids ...string) error {
	var missing []string
	for _, id := range ids {
		if _, ok := r.byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(errors.ErrNotFound, "templates %s", strings.Join(missing, ", "))
	}
	return nil
}

// List returns all template ids, sorted.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var (
	embeddedOnce     sync.Once
	embeddedRegistry *Registry
	embeddedErr      error
)

// Get returns the registry of templates compiled into the binary.
// It panics if they do not parse, which only a broken build can cause.
func Get() *Registry {
	embeddedOnce.Do(func() {
		sub, err := fs.Sub(embeddedFS, "assets")
		if err != nil {
			embeddedErr = err
			return
		}
		embeddedRegistry, embeddedErr = NewRegistryFromFS(sub)
	})

	if embeddedErr != nil {
		panic(embeddedErr)
	}
	return embeddedRegistry
}
