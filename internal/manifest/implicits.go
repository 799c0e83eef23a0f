package manifest

// applyImplicits fills defaults computed from the manifest itself. service
// is the owning directory name.
func applyImplicits(m *Manifest, service string) {
	if m.Name == "" {
		m.Name = service
	}

	if m.Image == nil {
		m.Image = &Image{}
	}
	if m.Image.Name == "" {
		m.Image.Name = m.Name
	}

	if m.Configs != nil && m.Configs.Name == "" {
		m.Configs.Name = m.Name + "-config"
	}

	if len(m.Ports) > 0 {
		if m.Health == nil {
			m.Health = &HealthCheck{}
		}
		if m.Health.Port == 0 {
			m.Health.Port = m.Ports[0]
		}
	}

	for i := range m.Dependencies {
		if m.Dependencies[i].API == "" {
			m.Dependencies[i].API = DefaultDependencyAPI
		}
	}
}
