package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	vfs "github.com/twpayne/go-vfs"

	"github.com/cameronsjo/berth/internal/quantity"
)

// TemplateExt marks a config file as a template source.
const TemplateExt = ".tmpl"

// Resource ceilings.
const (
	MaxRequestCPU    = 10.0
	MaxLimitCPU      = 20.0
	MaxRequestMemory = 10 * quantity.Gi
	MaxLimitMemory   = 20 * quantity.Gi
)

// Validation errors.
var (
	// ErrEmptyName indicates a manifest without a name.
	ErrEmptyName = errors.New("empty name")

	// ErrResourceBound indicates missing resources, request above limit, or a
	// value above its ceiling.
	ErrResourceBound = errors.New("resource bound violation")

	// ErrConfigShape indicates a malformed configs block.
	ErrConfigShape = errors.New("invalid configs")

	// ErrDependencyNotFound indicates a dependency without a service directory.
	ErrDependencyNotFound = errors.New("dependency not found")

	// ErrInvalidAPIVersion indicates a dependency api that is not v<number>.
	ErrInvalidAPIVersion = errors.New("invalid api version")

	// ErrRegionFileMissing indicates a declared region without global defaults.
	ErrRegionFileMissing = errors.New("region defaults file missing")

	// ErrEmptyRegionSet indicates a manifest that declares no regions.
	ErrEmptyRegionSet = errors.New("no regions declared")

	// ErrInitContainerInvalid indicates a bad init container image or command.
	ErrInitContainerInvalid = errors.New("invalid init container")

	// ErrHealthCheckIncomplete indicates a health block missing uri or wait.
	ErrHealthCheckIncomplete = errors.New("incomplete health check")
)

// initImagePattern matches [namespace/]component[:tag].
var initImagePattern = regexp.MustCompile(`^([a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*(:[A-Za-z0-9._-]+)?$`)

// ValidationError reports the first rule a manifest failed.
type ValidationError struct {
	Service string
	Region  string
	Field   string
	Err     error
}

func (e *ValidationError) Error() string {
	where := e.Service
	if e.Region != "" {
		where += " in " + e.Region
	}
	return fmt.Sprintf("validate %s: %s: %v", where, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validator checks resolved manifests. Cross-references are confirmed
// against the manifest root; the manifest itself is never modified.
type Validator struct {
	layout Layout
	fs     vfs.FS
	log    logrus.FieldLogger
}

// NewValidator creates a Validator for the manifest root.
func NewValidator(root string, opts ...Option) *Validator {
	s := newSettings(opts)
	return &Validator{
		layout: Layout{Root: root},
		fs:     s.fs,
		log:    s.logger,
	}
}

// Verify runs every rule in order and returns the first failure as a
// *ValidationError.
func (v *Validator) Verify(m *Manifest) error {
	rules := []func(*Manifest) (string, error){
		checkName,
		checkResources,
		checkConfigs,
		v.checkDependencies,
		v.checkRegions,
		checkInitContainers,
		checkHealth,
	}

	for _, rule := range rules {
		if field, err := rule(m); err != nil {
			return &ValidationError{
				Service: m.Name,
				Region:  m.Region,
				Field:   field,
				Err:     err,
			}
		}
	}

	v.log.WithFields(logrus.Fields{
		"service": m.Name,
		"region":  m.Region,
	}).Debug("Manifest valid")
	return nil
}

func checkName(m *Manifest) (string, error) {
	if m.Name == "" {
		return "name", ErrEmptyName
	}
	return "", nil
}

func checkResources(m *Manifest) (string, error) {
	r := m.Resources
	if r == nil {
		return "resources", fmt.Errorf("%w: resources not set", ErrResourceBound)
	}
	if r.Requests == nil {
		return "resources.requests", fmt.Errorf("%w: requests not set", ErrResourceBound)
	}
	if r.Limits == nil {
		return "resources.limits", fmt.Errorf("%w: limits not set", ErrResourceBound)
	}

	var (
		reqCPU, limCPU float64
		reqMem, limMem uint64
	)
	for _, q := range []struct {
		field, value string
		parse        func(string) error
	}{
		{"resources.requests.cpu", r.Requests.CPU, func(s string) (err error) { reqCPU, err = quantity.ParseCPU(s); return err }},
		{"resources.requests.memory", r.Requests.Memory, func(s string) (err error) { reqMem, err = quantity.ParseMemory(s); return err }},
		{"resources.limits.cpu", r.Limits.CPU, func(s string) (err error) { limCPU, err = quantity.ParseCPU(s); return err }},
		{"resources.limits.memory", r.Limits.Memory, func(s string) (err error) { limMem, err = quantity.ParseMemory(s); return err }},
	} {
		kerr := quantity.CheckKubernetes(q.value)
		if err := q.parse(q.value); err != nil {
			if kerr != nil {
				return q.field, fmt.Errorf("%w; %w", err, kerr)
			}
			return q.field, err
		}
		if kerr != nil {
			return q.field, kerr
		}
	}

	switch {
	case reqCPU > limCPU:
		return "resources.requests.cpu", fmt.Errorf("%w: request %s above limit %s", ErrResourceBound, r.Requests.CPU, r.Limits.CPU)
	case reqMem > limMem:
		return "resources.requests.memory", fmt.Errorf("%w: request %s above limit %s", ErrResourceBound, r.Requests.Memory, r.Limits.Memory)
	case reqCPU > MaxRequestCPU:
		return "resources.requests.cpu", fmt.Errorf("%w: %s exceeds %g cores", ErrResourceBound, r.Requests.CPU, MaxRequestCPU)
	case reqMem > MaxRequestMemory:
		return "resources.requests.memory", fmt.Errorf("%w: %s exceeds 10Gi", ErrResourceBound, r.Requests.Memory)
	case limCPU > MaxLimitCPU:
		return "resources.limits.cpu", fmt.Errorf("%w: %s exceeds %g cores", ErrResourceBound, r.Limits.CPU, MaxLimitCPU)
	case limMem > MaxLimitMemory:
		return "resources.limits.memory", fmt.Errorf("%w: %s exceeds 20Gi", ErrResourceBound, r.Limits.Memory)
	}
	return "", nil
}

func checkConfigs(m *Manifest) (string, error) {
	c := m.Configs
	if c == nil {
		return "", nil
	}

	switch {
	case c.Mount == "":
		return "configs.mount", fmt.Errorf("%w: mount not set", ErrConfigShape)
	case c.Mount == "~":
		return "configs.mount", fmt.Errorf("%w: mount is a placeholder", ErrConfigShape)
	case !strings.HasSuffix(c.Mount, "/"):
		return "configs.mount", fmt.Errorf("%w: mount %q must end with /", ErrConfigShape, c.Mount)
	}

	for i, f := range c.Files {
		if !strings.HasSuffix(f.Name, TemplateExt) {
			return fmt.Sprintf("configs.files[%d].name", i),
				fmt.Errorf("%w: %q is not a %s template", ErrConfigShape, f.Name, TemplateExt)
		}
	}
	return "", nil
}

func (v *Validator) checkDependencies(m *Manifest) (string, error) {
	for i, d := range m.Dependencies {
		field := fmt.Sprintf("dependencies[%d]", i)

		if d.Name == "" {
			return field + ".name", fmt.Errorf("%w: name not set", ErrDependencyNotFound)
		}
		ok, err := v.exists(v.layout.ServiceDir(d.Name))
		if err != nil {
			return field + ".name", err
		}
		if !ok {
			return field + ".name", fmt.Errorf("%w: %q", ErrDependencyNotFound, d.Name)
		}

		if _, err := strconv.ParseUint(strings.TrimPrefix(d.API, "v"), 10, 32); err != nil {
			return field + ".api", fmt.Errorf("%w: %q", ErrInvalidAPIVersion, d.API)
		}
	}
	return "", nil
}

func (v *Validator) checkRegions(m *Manifest) (string, error) {
	if len(m.Regions) == 0 {
		return "regions", ErrEmptyRegionSet
	}

	for i, r := range m.Regions {
		ok, err := v.exists(v.layout.RegionDefaults(r))
		if err != nil {
			return fmt.Sprintf("regions[%d]", i), err
		}
		if !ok {
			return fmt.Sprintf("regions[%d]", i),
				fmt.Errorf("%w: %s", ErrRegionFileMissing, v.layout.RegionDefaults(r))
		}
	}
	return "", nil
}

func checkInitContainers(m *Manifest) (string, error) {
	for i, c := range m.InitContainers {
		field := fmt.Sprintf("initContainers[%d]", i)
		if !initImagePattern.MatchString(c.Image) {
			return field + ".image", fmt.Errorf("%w: image %q", ErrInitContainerInvalid, c.Image)
		}
		if len(c.Command) == 0 {
			return field + ".command", fmt.Errorf("%w: %s has no command", ErrInitContainerInvalid, c.Name)
		}
	}
	return "", nil
}

func checkHealth(m *Manifest) (string, error) {
	h := m.Health
	if h == nil {
		return "", nil
	}
	if h.URI == "" {
		return "health.uri", fmt.Errorf("%w: uri not set", ErrHealthCheckIncomplete)
	}
	if h.Wait == 0 {
		return "health.wait", fmt.Errorf("%w: wait not set", ErrHealthCheckIncomplete)
	}
	return "", nil
}

func (v *Validator) exists(path string) (bool, error) {
	if _, err := v.fs.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return true, nil
}

// ValidateAll resolves and verifies service once per region declared in its
// base descriptor, offline and in order. The first failure wins.
func ValidateAll(ctx context.Context, r *Resolver, v *Validator, service string) error {
	base, err := r.Load(service)
	if err != nil {
		return err
	}
	if len(base.Regions) == 0 {
		name := base.Name
		if name == "" {
			name = service
		}
		return &ValidationError{Service: name, Field: "regions", Err: ErrEmptyRegionSet}
	}

	for _, region := range base.Regions {
		m, err := r.Resolve(ctx, region, service, nil)
		if err != nil {
			return err
		}
		if err := v.Verify(m); err != nil {
			return err
		}
	}
	return nil
}
