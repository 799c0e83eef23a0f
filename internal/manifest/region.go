package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRegion indicates a region that is not of the form namespace-location.
var ErrInvalidRegion = errors.New("invalid region")

// ParseRegion splits a region identifier into namespace and location.
func ParseRegion(region string) (namespace, location string, err error) {
	parts := strings.Split(region, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q must be namespace-location", ErrInvalidRegion, region)
	}
	return parts[0], parts[1], nil
}
