// Package alert sends validation outcomes to chat providers.
package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Severity levels for alerts.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert represents a notification to send.
type Alert struct {
	Title    string            // Short title/subject
	Message  string            // Full message body
	Severity Severity          // Alert severity
	Source   string            // What generated this (e.g., "validate")
	Link     string            // Optional "url" or "url|description"
	Metadata map[string]string // Additional context (run id, counts)
}

// Provider interface for alert backends.
type Provider interface {
	Name() string
	Send(ctx context.Context, alert *Alert) error
	IsConfigured() bool
}

// Manager handles multiple alert providers.
type Manager struct {
	providers []Provider
}

// NewManager creates a new alert manager.
func NewManager() *Manager {
	return &Manager{providers: make([]Provider, 0)}
}

// AddProvider adds a provider if it is configured.
func (m *Manager) AddProvider(p Provider) {
	if p.IsConfigured() {
		m.providers = append(m.providers, p)
	}
}

// Send sends an alert to all configured providers.
// Returns an aggregated error if any provider fails.
func (m *Manager) Send(ctx context.Context, alert *Alert) error {
	if len(m.providers) == 0 {
		return nil
	}

	var errs []error
	for _, p := range m.providers {
		if err := p.Send(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("alert errors: %w", errors.Join(errs...))
	}
	return nil
}

// HasProviders returns true if at least one provider is configured.
func (m *Manager) HasProviders() bool {
	return len(m.providers) > 0
}

// ProviderNames returns the names of all configured providers.
func (m *Manager) ProviderNames() []string {
	names := make([]string, len(m.providers))
	for i, p := range m.providers {
		names[i] = p.Name()
	}
	return names
}

// Result is the validation outcome for one service.
type Result struct {
	Service string
	Err     error
}

// SendValidationSummary reports a batch validation run. Any failure makes
// the alert an error; a clean run is informational.
func (m *Manager) SendValidationSummary(ctx context.Context, run string, results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", r.Service, r.Err))
		}
	}

	a := &Alert{
		Source: "validate",
		Metadata: map[string]string{
			"run":    run,
			"passed": fmt.Sprintf("%d", len(results)-len(failed)),
			"failed": fmt.Sprintf("%d", len(failed)),
		},
	}
	if len(failed) == 0 {
		a.Title = "Manifests Valid"
		a.Message = fmt.Sprintf("All %d service(s) passed validation", len(results))
		a.Severity = SeverityInfo
	} else {
		a.Title = "Manifest Validation Failed"
		a.Message = strings.Join(failed, "\n")
		a.Severity = SeverityError
	}

	return m.Send(ctx, a)
}
