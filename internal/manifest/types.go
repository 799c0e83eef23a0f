package manifest

import (
	"github.com/cameronsjo/berth/internal/secret"
)

// DefaultImageTag is used when rendering an image reference without a tag.
const DefaultImageTag = "latest"

// DefaultDependencyAPI is the api version assumed for dependencies.
const DefaultDependencyAPI = "v1"

// SecretMode records how env placeholders were handled during resolution.
type SecretMode int

const (
	// SecretsSkipped means no store was supplied and placeholders remain.
	SecretsSkipped SecretMode = iota
	// SecretsResolved means every placeholder was replaced.
	SecretsResolved
)

func (m SecretMode) String() string {
	if m == SecretsResolved {
		return "resolved"
	}
	return "skipped"
}

// Manifest is a service's deployment descriptor.
type Manifest struct {
	// Name is the service name; filled from the directory name when absent.
	Name string `yaml:"name,omitempty"`

	// Image locates the container image.
	Image *Image `yaml:"image,omitempty"`

	// Command overrides the container entrypoint.
	Command []string `yaml:"command,omitempty"`

	// Resources holds requests and limits as Kubernetes quantities.
	Resources *Resources `yaml:"resources,omitempty"`

	// Replicas bounds the replica count.
	Replicas *Replicas `yaml:"replicas,omitempty"`

	// Env holds environment variables; values may be secret placeholders.
	Env map[string]secret.Value `yaml:"env,omitempty"`

	// Configs describes templated config files mounted into the container.
	Configs *ConfigMap `yaml:"configs,omitempty"`

	// VolumeMounts are container-local mounts.
	VolumeMounts []VolumeMount `yaml:"volumeMounts,omitempty"`

	// InitContainers run before the main container.
	InitContainers []InitContainer `yaml:"initContainers,omitempty"`

	// Volumes are pod volumes (secret projections and friends).
	Volumes []Volume `yaml:"volumes,omitempty"`

	// Ports lists exposed container ports.
	Ports []uint32 `yaml:"ports,omitempty"`

	// Vault overrides the secret namespace segment.
	Vault *VaultOpts `yaml:"vault,omitempty"`

	// Health configures the readiness check.
	Health *HealthCheck `yaml:"health,omitempty"`

	// Dependencies names services this one calls.
	Dependencies []Dependency `yaml:"dependencies,omitempty"`

	// Regions lists where the service may be deployed.
	Regions []string `yaml:"regions,omitempty"`

	// Dashboards to generate, keyed by dashboard name.
	Dashboards map[string]Dashboard `yaml:"dashboards,omitempty"`

	// Prometheus scrape options.
	Prometheus *Prometheus `yaml:"prometheus,omitempty"`

	// Path is the descriptor file this manifest was read from.
	Path string `yaml:"-"`

	// Region is the region this manifest was resolved for.
	Region string `yaml:"-"`

	// Namespace and Location are split from Region.
	Namespace string `yaml:"-"`
	Location  string `yaml:"-"`

	// Secrets records whether placeholders were resolved.
	Secrets SecretMode `yaml:"-"`
}

// Image locates a container image.
type Image struct {
	Name       string `yaml:"name,omitempty"`
	Repository string `yaml:"repository,omitempty"`
	Tag        string `yaml:"tag,omitempty"`
}

// Ref renders the image reference, defaulting the tag to "latest".
func (i Image) Ref() string {
	ref := i.Name
	if i.Repository != "" {
		ref = i.Repository + "/" + ref
	}
	tag := i.Tag
	if tag == "" {
		tag = DefaultImageTag
	}
	return ref + ":" + tag
}

// Resources holds resource requests and limits.
type Resources struct {
	Requests *ResourceSpec `yaml:"requests,omitempty"`
	Limits   *ResourceSpec `yaml:"limits,omitempty"`
}

// ResourceSpec is a cpu/memory pair of Kubernetes quantity strings.
type ResourceSpec struct {
	CPU    string `yaml:"cpu"`
	Memory string `yaml:"memory"`
}

// Replicas bounds the replica count.
type Replicas struct {
	Min uint32 `yaml:"min"`
	Max uint32 `yaml:"max"`
}

// ConfigMap describes templated config files and where they are mounted.
type ConfigMap struct {
	// Name of the generated config map; defaults to "{service}-config".
	Name string `yaml:"name,omitempty"`

	// Mount is the directory the files land in. Must end with "/".
	Mount string `yaml:"mount"`

	// Files lists template sources and their destination file names.
	Files []ConfigFile `yaml:"files"`
}

// ConfigFile maps a template source to a destination file name.
type ConfigFile struct {
	Name string `yaml:"name"`
	Dest string `yaml:"dest"`
}

// VolumeMount mounts a volume into the container.
type VolumeMount struct {
	Name      string `yaml:"name"`
	MountPath string `yaml:"mountPath"`
	SubPath   string `yaml:"subPath,omitempty"`
	ReadOnly  bool   `yaml:"readOnly,omitempty"`
}

// Volume is a pod volume.
type Volume struct {
	Name      string           `yaml:"name"`
	Secret    *SecretVolume    `yaml:"secret,omitempty"`
	Projected *ProjectedVolume `yaml:"projected,omitempty"`
	EmptyDir  *EmptyDirVolume  `yaml:"emptyDir,omitempty"`
}

// EmptyDirVolume is scratch space that lives as long as the pod.
type EmptyDirVolume struct {
	Medium    string `yaml:"medium,omitempty"`
	SizeLimit string `yaml:"sizeLimit,omitempty"`
}

// SecretVolume projects a cluster secret as files.
type SecretVolume struct {
	SecretName string    `yaml:"secretName"`
	Items      []KeyPath `yaml:"items,omitempty"`
}

// ProjectedVolume combines several sources into one volume.
type ProjectedVolume struct {
	Sources []ProjectionSource `yaml:"sources"`
}

// ProjectionSource is one source of a projected volume.
type ProjectionSource struct {
	Secret *SecretProjection `yaml:"secret,omitempty"`
}

// SecretProjection selects keys from a cluster secret.
type SecretProjection struct {
	Name  string    `yaml:"name"`
	Items []KeyPath `yaml:"items,omitempty"`
}

// KeyPath maps a secret key to a file path.
type KeyPath struct {
	Key  string `yaml:"key"`
	Path string `yaml:"path"`
}

// InitContainer runs to completion before the main container starts.
type InitContainer struct {
	Name    string   `yaml:"name"`
	Image   string   `yaml:"image"`
	Command []string `yaml:"command"`
}

// VaultOpts overrides the secret namespace segment.
type VaultOpts struct {
	Name string `yaml:"name"`
}

// HealthCheck configures the readiness check.
type HealthCheck struct {
	// URI is the HTTP path polled.
	URI string `yaml:"uri,omitempty"`

	// Wait is the number of seconds to wait before polling.
	Wait uint32 `yaml:"wait,omitempty"`

	// Port defaults to the first exposed port.
	Port uint32 `yaml:"port,omitempty"`
}

// Dependency names a service this one calls.
type Dependency struct {
	Name string `yaml:"name"`
	API  string `yaml:"api,omitempty"`
}

// Dashboard lists metric rows to graph.
type Dashboard struct {
	Rows []string `yaml:"rows"`
}

// Prometheus configures metric scraping.
type Prometheus struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SecretName returns the effective secret namespace name: the vault
// override when set, otherwise the service name.
func (m *Manifest) SecretName() string {
	if m.Vault != nil && m.Vault.Name != "" {
		return m.Vault.Name
	}
	return m.Name
}
