package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	vfs "github.com/twpayne/go-vfs"
	"gopkg.in/yaml.v3"
)

// Descriptor layout under a manifest root.
const (
	ServicesDir     = "services"
	EnvironmentsDir = "environments"
	DescriptorFile  = "manifest.yml"
	OverrideExt     = ".yml"
)

// Resolution and descriptor errors.
var (
	// ErrServiceNotFound indicates the service directory or descriptor is absent.
	ErrServiceNotFound = errors.New("service not found")

	// ErrDescriptorParse indicates a malformed descriptor or override file.
	ErrDescriptorParse = errors.New("parse descriptor")

	// ErrDescriptorExists indicates init would overwrite a descriptor.
	ErrDescriptorExists = errors.New("descriptor already exists")
)

// Layout computes descriptor paths under a manifest root.
type Layout struct {
	Root string
}

// ServiceDir returns the directory holding a service's files.
func (l Layout) ServiceDir(service string) string {
	return filepath.Join(l.Root, ServicesDir, service)
}

// Descriptor returns the path of a service's base descriptor.
func (l Layout) Descriptor(service string) string {
	return filepath.Join(l.ServiceDir(service), DescriptorFile)
}

// ServiceOverride returns the path of a service's region override.
func (l Layout) ServiceOverride(service, region string) string {
	return filepath.Join(l.ServiceDir(service), region+OverrideExt)
}

// RegionDefaults returns the path of the global defaults for a region.
func (l Layout) RegionDefaults(region string) string {
	return filepath.Join(l.Root, EnvironmentsDir, region+OverrideExt)
}

// Load reads and decodes a service's base descriptor.
func Load(fsys vfs.FS, layout Layout, service string) (*Manifest, error) {
	dir := layout.ServiceDir(service)
	if _, err := fsys.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, service)
		}
		return nil, fmt.Errorf("stat service dir: %w", err)
	}

	path := layout.Descriptor(service)
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: no %s", ErrServiceNotFound, service, DescriptorFile)
		}
		return nil, fmt.Errorf("read descriptor: %w", err)
	}

	m, err := decode(path, data)
	if err != nil {
		return nil, err
	}
	m.Path = path
	return m, nil
}

// loadOverride reads an optional override layer. A missing file is not an
// error; ok reports whether the layer exists.
func loadOverride(fsys vfs.FS, path string) (m *Manifest, ok bool, err error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read override: %w", err)
	}

	m, err = decode(path, data)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func decode(path string, data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDescriptorParse, path, err)
	}
	return &m, nil
}

// Marshal serializes a manifest in descriptor form. Unset fields are
// omitted and env keys are sorted.
func Marshal(m *Manifest) ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// Write serializes the manifest back to the descriptor it was loaded from.
func (m *Manifest) Write(fsys vfs.FS) error {
	if m.Path == "" {
		return fmt.Errorf("write manifest %s: no descriptor path", m.Name)
	}

	data, err := Marshal(m)
	if err != nil {
		return err
	}

	if err := fsys.WriteFile(m.Path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Init scaffolds a descriptor holding only the service name. It refuses to
// overwrite an existing descriptor.
func Init(fsys vfs.FS, layout Layout, service string) (*Manifest, error) {
	if service == "" {
		return nil, ErrEmptyName
	}

	path := layout.Descriptor(service)
	if _, err := fsys.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDescriptorExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat descriptor: %w", err)
	}

	if err := vfs.MkdirAll(fsys, layout.ServiceDir(service), 0o755); err != nil {
		return nil, fmt.Errorf("create service dir: %w", err)
	}

	m := &Manifest{Name: service, Path: path}
	if err := m.Write(fsys); err != nil {
		return nil, err
	}
	return m, nil
}
