package manifest

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	vfs "github.com/twpayne/go-vfs"

	"github.com/cameronsjo/berth/internal/secret"
)

// ErrUnresolvedSecret indicates an override layer added a secret placeholder
// after secrets were resolved.
var ErrUnresolvedSecret = errors.New("unresolved secret placeholder")

// Resolver builds resolved manifests from a manifest root. It holds only
// immutable configuration and is safe for concurrent use.
type Resolver struct {
	layout Layout
	fs     vfs.FS
	log    logrus.FieldLogger
}

// NewResolver creates a Resolver for the manifest root.
func NewResolver(root string, opts ...Option) *Resolver {
	s := newSettings(opts)
	return &Resolver{
		layout: Layout{Root: root},
		fs:     s.fs,
		log:    s.logger,
	}
}

// Layout returns the descriptor layout the resolver reads from.
func (r *Resolver) Layout() Layout {
	return r.layout
}

// Load reads the unresolved base descriptor of a service.
func (r *Resolver) Load(service string) (*Manifest, error) {
	return Load(r.fs, r.layout, service)
}

// Resolve builds the manifest for service in region. When store is nil the
// secrets step is skipped and the manifest is marked SecretsSkipped.
// Any failing step aborts the call; no partial manifest is returned.
func (r *Resolver) Resolve(ctx context.Context, region, service string, store secret.Store) (*Manifest, error) {
	log := r.log.WithFields(logrus.Fields{
		"service": service,
		"region":  region,
	})

	// The region names override files, so it is checked before any read.
	namespace, location, err := ParseRegion(region)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", service, err)
	}

	m, err := Load(r.fs, r.layout, service)
	if err != nil {
		return nil, fmt.Errorf("resolve %s in %s: %w", service, region, err)
	}
	log.WithField("path", m.Path).Debug("Loaded descriptor")

	applyImplicits(m, service)

	if store != nil {
		env, err := secret.Resolve(ctx, store, region, m.SecretName(), m.Env)
		if err != nil {
			return nil, fmt.Errorf("resolve %s in %s: %w", service, region, err)
		}
		m.Env = env
		m.Secrets = SecretsResolved
		log.Debug("Resolved secrets")
	} else {
		m.Secrets = SecretsSkipped
		log.Debug("No secret store, leaving placeholders unresolved")
	}

	for _, path := range []string{
		r.layout.ServiceOverride(service, region),
		r.layout.RegionDefaults(region),
	} {
		layer, ok, err := loadOverride(r.fs, path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s in %s: %w", service, region, err)
		}
		if !ok {
			log.WithField("path", path).Debug("No override layer")
			continue
		}
		mergeOverride(m, layer)
		log.WithField("path", path).Debug("Merged override layer")

		if store != nil {
			if key, ok := firstPlaceholder(m.Env); ok {
				return nil, fmt.Errorf("resolve %s in %s: %w: %s from %s",
					service, region, ErrUnresolvedSecret, key, path)
			}
		}
	}

	if len(m.Ports) == 0 {
		log.Warn("Service exposes no ports")
	}

	m.Region = region
	m.Namespace = namespace
	m.Location = location

	return m, nil
}

// firstPlaceholder returns the first env key, in sorted order, whose value is
// still a secret placeholder.
func firstPlaceholder(env map[string]secret.Value) (string, bool) {
	keys := make([]string, 0, len(env))
	for k, v := range env {
		if v.IsPlaceholder() {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return keys[0], true
}
