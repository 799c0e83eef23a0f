package manifest

import (
	"github.com/cameronsjo/berth/internal/secret"
)

// mergeOverride fills gaps in base from an override layer. Values already
// present on base always win; override is never mutated and nothing it
// owns is shared with base.
//
// Merge semantics:
//   - env: per-key, base keys win
//   - image: repository and tag fill when unset
//   - resources, replicas, volumeMounts, initContainers, volumes: adopted
//     wholesale when base has none
//   - health: adopted wholesale when base has none, else uri and wait
//     fill independently
func mergeOverride(base, override *Manifest) {
	if override == nil {
		return
	}

	if len(override.Env) > 0 {
		if base.Env == nil {
			base.Env = make(map[string]secret.Value, len(override.Env))
		}
		for k, v := range override.Env {
			if _, exists := base.Env[k]; !exists {
				base.Env[k] = v
			}
		}
	}

	if override.Image != nil {
		if base.Image == nil {
			base.Image = &Image{}
		}
		if base.Image.Repository == "" {
			base.Image.Repository = override.Image.Repository
		}
		if base.Image.Tag == "" {
			base.Image.Tag = override.Image.Tag
		}
	}

	if base.Resources == nil && override.Resources != nil {
		base.Resources = copyResources(override.Resources)
	}

	if base.Replicas == nil && override.Replicas != nil {
		r := *override.Replicas
		base.Replicas = &r
	}

	if len(base.VolumeMounts) == 0 && len(override.VolumeMounts) > 0 {
		base.VolumeMounts = append([]VolumeMount(nil), override.VolumeMounts...)
	}

	if len(base.InitContainers) == 0 && len(override.InitContainers) > 0 {
		base.InitContainers = make([]InitContainer, len(override.InitContainers))
		for i, c := range override.InitContainers {
			c.Command = append([]string(nil), c.Command...)
			base.InitContainers[i] = c
		}
	}

	if len(base.Volumes) == 0 && len(override.Volumes) > 0 {
		base.Volumes = copyVolumes(override.Volumes)
	}

	if override.Health != nil {
		if base.Health == nil {
			h := *override.Health
			base.Health = &h
		} else {
			if base.Health.URI == "" {
				base.Health.URI = override.Health.URI
			}
			if base.Health.Wait == 0 {
				base.Health.Wait = override.Health.Wait
			}
		}
	}
}

func copyResources(r *Resources) *Resources {
	out := &Resources{}
	if r.Requests != nil {
		req := *r.Requests
		out.Requests = &req
	}
	if r.Limits != nil {
		lim := *r.Limits
		out.Limits = &lim
	}
	return out
}

func copyVolumes(vols []Volume) []Volume {
	out := make([]Volume, len(vols))
	for i, v := range vols {
		out[i] = Volume{Name: v.Name}
		if v.Secret != nil {
			out[i].Secret = &SecretVolume{
				SecretName: v.Secret.SecretName,
				Items:      append([]KeyPath(nil), v.Secret.Items...),
			}
		}
		if v.Projected != nil {
			sources := make([]ProjectionSource, len(v.Projected.Sources))
			for j, s := range v.Projected.Sources {
				if s.Secret != nil {
					sources[j].Secret = &SecretProjection{
						Name:  s.Secret.Name,
						Items: append([]KeyPath(nil), s.Secret.Items...),
					}
				}
			}
			out[i].Projected = &ProjectedVolume{Sources: sources}
		}
		if v.EmptyDir != nil {
			e := *v.EmptyDir
			out[i].EmptyDir = &e
		}
	}
	return out
}
