package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/cameronsjo/berth/internal/secret"
)

var (
	// ErrTemplateRender indicates a config template failed to parse or execute.
	ErrTemplateRender = errors.New("render config template")

	// ErrPathEscape indicates a config path that is absolute or leaves its
	// base directory.
	ErrPathEscape = errors.New("path escapes base directory")
)

// TemplateData is the value config templates execute against.
type TemplateData struct {
	Name      string
	Region    string
	Namespace string
	Location  string
	Image     string
	Env       map[string]string
	Manifest  *Manifest
}

// RenderConfigs executes every config template of a resolved manifest and
// returns the output keyed by destination file name.
func (r *Resolver) RenderConfigs(m *Manifest) (map[string][]byte, error) {
	out := make(map[string][]byte)
	if m.Configs == nil {
		return out, nil
	}

	data := TemplateData{
		Name:      m.Name,
		Region:    m.Region,
		Namespace: m.Namespace,
		Location:  m.Location,
		Env:       secret.Strings(m.Env),
		Manifest:  m,
	}
	if m.Image != nil {
		data.Image = m.Image.Ref()
	}

	dir := r.layout.ServiceDir(m.Name)
	if m.Path != "" {
		dir = filepath.Dir(m.Path)
	}

	for _, f := range m.Configs.Files {
		if err := checkRelative(f.Name); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrTemplateRender, f.Name, err)
		}
		src := filepath.Join(dir, f.Name)
		content, err := r.fs.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrTemplateRender, f.Name, err)
		}

		tmpl, err := template.New(f.Name).
			Funcs(sprig.TxtFuncMap()).
			Funcs(r.renderFuncs(dir)).
			Option("missingkey=error").
			Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrTemplateRender, f.Name, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrTemplateRender, f.Name, err)
		}

		dest := f.Dest
		if dest == "" {
			dest = strings.TrimSuffix(path.Base(f.Name), TemplateExt)
		}
		if err := checkRelative(dest); err != nil {
			return nil, fmt.Errorf("%w %s: dest: %w", ErrTemplateRender, f.Name, err)
		}
		out[dest] = buf.Bytes()
	}

	return out, nil
}

// renderFuncs returns template functions scoped to a service directory.
func (r *Resolver) renderFuncs(dir string) template.FuncMap {
	return template.FuncMap{
		"include": func(name string) (string, error) {
			if err := checkRelative(name); err != nil {
				return "", fmt.Errorf("include %s: %w", name, err)
			}
			data, err := r.fs.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return "", fmt.Errorf("include %s: %w", name, err)
			}
			return string(data), nil
		},
	}
}

// checkRelative rejects names that would resolve outside the directory they
// are joined onto.
func checkRelative(name string) error {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: %q", ErrPathEscape, name)
	}
	clean := filepath.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q", ErrPathEscape, name)
	}
	return nil
}
