package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/banshee-data/hydro.report/internal/units"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateProvider abstracts template loading and execution.
// Production uses EmbeddedTemplateProvider; tests may substitute their own.
type TemplateProvider interface {
	ExecuteTemplate(w io.Writer, name string, data interface{}) error
}

// EmbeddedTemplateProvider loads templates from an embedded filesystem and
// caches them after the first parse.
type EmbeddedTemplateProvider struct {
	fs      embed.FS
	baseDir string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewEmbeddedTemplateProvider creates a provider with the given embedded FS.
func NewEmbeddedTemplateProvider(embedFS embed.FS, baseDir string) *EmbeddedTemplateProvider {
	return &EmbeddedTemplateProvider{
		fs:      embedFS,
		baseDir: baseDir,
		cache:   make(map[string]*template.Template),
	}
}

var templateFuncs = template.FuncMap{
	"volume": func(mcm float64, unit string) string {
		return fmt.Sprintf("%.2f %s", units.ConvertVolume(mcm, unit), units.Symbol(unit))
	},
	"area": func(km2 float64, unit string) string {
		return fmt.Sprintf("%.2f %s", units.ConvertArea(km2, unit), units.Symbol(unit))
	},
}

// GetTemplate parses and caches a template from the embedded FS.
func (p *EmbeddedTemplateProvider) GetTemplate(name string) (*template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.cache[name]; ok {
		return t, nil
	}

	path := name
	if p.baseDir != "" {
		path = p.baseDir + "/" + name
	}
	content, err := p.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := template.New(name).Funcs(templateFuncs).Parse(string(content))
	if err != nil {
		return nil, err
	}
	p.cache[name] = t
	return t, nil
}

// ExecuteTemplate loads and executes a template.
func (p *EmbeddedTemplateProvider) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	t, err := p.GetTemplate(name)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}
