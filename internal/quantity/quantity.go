// Package quantity parses Kubernetes-style CPU and memory quantity strings.
package quantity

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"k8s.io/apimachinery/pkg/api/resource"
)

var (
	// ErrUnknownUnit indicates a unit suffix outside the supported set.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrInvalidNumber indicates the numeric part of a quantity did not parse.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrNotKubernetes indicates the Kubernetes API would reject the quantity.
	ErrNotKubernetes = errors.New("not a kubernetes quantity")
)

// Byte multipliers for memory unit suffixes.
const (
	Ki uint64 = 1024
	Mi        = 1024 * Ki
	Gi        = 1024 * Mi
	K  uint64 = 1000
	M         = 1000 * K
	G         = 1000 * M
)

var memoryUnits = map[string]uint64{
	"":   1,
	"Ki": Ki,
	"Mi": Mi,
	"Gi": Gi,
	"k":  K,
	"M":  M,
	"G":  G,
}

// ParseMemory parses a memory quantity such as "512Mi" or "1G" into bytes.
func ParseMemory(s string) (uint64, error) {
	digits, unit := split(s)
	mult, ok := memoryUnits[unit]
	if !ok {
		return 0, fmt.Errorf("%w %q in %q", ErrUnknownUnit, unit, s)
	}

	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q in %q", ErrInvalidNumber, digits, s)
	}

	bytes := value * float64(mult)
	if bytes >= math.MaxUint64 {
		return 0, fmt.Errorf("%w %q in %q: out of range", ErrInvalidNumber, digits, s)
	}
	return uint64(bytes), nil
}

// ParseCPU parses a CPU quantity such as "200m" or "2" into cores.
// Only the millicore and kilocore suffixes are accepted.
func ParseCPU(s string) (float64, error) {
	digits, unit := split(s)

	value, err := strconv.ParseFloat(digits, 64)
	switch unit {
	case "", "m", "k":
	default:
		return 0, fmt.Errorf("%w %q in %q", ErrUnknownUnit, unit, s)
	}
	if err != nil {
		return 0, fmt.Errorf("%w %q in %q", ErrInvalidNumber, digits, s)
	}

	switch unit {
	case "m":
		value /= 1000
	case "k":
		value *= 1000
	}

	return value, nil
}

// CheckKubernetes reports whether the Kubernetes API accepts s as a quantity.
func CheckKubernetes(s string) error {
	if _, err := resource.ParseQuantity(s); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrNotKubernetes, s, err)
	}
	return nil
}

// split separates the leading decimal run from the unit suffix.
func split(s string) (digits, unit string) {
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	return s[:i], s[i:]
}
