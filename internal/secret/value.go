// Package secret resolves environment placeholders against a secret store.
//
// Descriptor env values are either literal configuration or one of two
// placeholder forms:
//
//	DB_PASSWORD: IN_VAULT               # read from the secret store
//	API_KEY: IN_KUBE_SECRETS            # reference a cluster-managed secret
//	TOKEN: IN_KUBE_SECRETS:shared-token # same, with an explicit key
//
// Placeholders are parsed once, when the descriptor is decoded, into a
// Value so the resolver only ever switches over a closed set of kinds.
package secret

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placeholder sentinels recognized in descriptor env values.
const (
	VaultSentinel      = "IN_VAULT"
	KubeSecretSentinel = "IN_KUBE_SECRETS"

	kubeSecretPrefix = "kube-secret-"
)

// ErrInvalidSecretPath indicates a malformed IN_KUBE_SECRETS placeholder.
var ErrInvalidSecretPath = errors.New("invalid secret path")

// Kind identifies what an env value denotes.
type Kind int

const (
	// Literal is plain configuration passed through unchanged.
	Literal Kind = iota
	// VaultRef is resolved by reading the secret store.
	VaultRef
	// KubeSecretRef is rewritten to a cluster secret reference name.
	KubeSecretRef
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case VaultRef:
		return "vault"
	case KubeSecretRef:
		return "kube-secret"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a parsed env value.
type Value struct {
	Kind Kind

	// Literal holds the value for Literal kinds.
	Literal string

	// Subkey optionally overrides the env key for KubeSecretRef kinds.
	Subkey string
}

// Lit returns a literal Value.
func Lit(s string) Value {
	return Value{Kind: Literal, Literal: s}
}

// Parse classifies a raw env value.
func Parse(raw string) (Value, error) {
	switch {
	case raw == VaultSentinel:
		return Value{Kind: VaultRef}, nil
	case raw == KubeSecretSentinel:
		return Value{Kind: KubeSecretRef}, nil
	case strings.HasPrefix(raw, KubeSecretSentinel+":"):
		sub := strings.TrimPrefix(raw, KubeSecretSentinel+":")
		if sub == "" {
			return Value{}, fmt.Errorf("%w: %q has an empty key", ErrInvalidSecretPath, raw)
		}
		return Value{Kind: KubeSecretRef, Subkey: sub}, nil
	case strings.HasPrefix(raw, KubeSecretSentinel):
		return Value{}, fmt.Errorf("%w: %q (expected %s or %s:<key>)", ErrInvalidSecretPath, raw, KubeSecretSentinel, KubeSecretSentinel)
	default:
		return Lit(raw), nil
	}
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(raw string) Value {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the value in descriptor form.
func (v Value) String() string {
	switch v.Kind {
	case VaultRef:
		return VaultSentinel
	case KubeSecretRef:
		if v.Subkey != "" {
			return KubeSecretSentinel + ":" + v.Subkey
		}
		return KubeSecretSentinel
	default:
		return v.Literal
	}
}

// IsPlaceholder reports whether the value still needs resolving.
func (v Value) IsPlaceholder() bool {
	return v.Kind != Literal
}

// KubeSecretName derives the cluster secret reference for an env key.
// Uppercase and underscores are folded: API_KEY -> kube-secret-api-key.
func KubeSecretName(key string) string {
	return kubeSecretPrefix + strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// UnmarshalYAML parses scalar env values into their placeholder kind.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: env value must be a scalar", node.Line)
	}
	parsed, err := Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

// MarshalYAML writes the value back in descriptor form.
func (v Value) MarshalYAML() (any, error) {
	return v.String(), nil
}

// Strings flattens an env map into plain strings.
func Strings(env map[string]Value) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = v.String()
	}
	return out
}
