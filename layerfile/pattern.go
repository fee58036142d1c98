// Package layerfile provides API for reading and writing tile layers as
// individual files with paths like "/out/{layer}.bin". Each file holds the
// raw little-endian wire values of the layer cells.
package layerfile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPattern = errors.New("libtmx: invalid file pattern")
	ErrInvalidName    = errors.New("libtmx: invalid layer name")
)

const placeholder = "{layer}"

func validatePattern(pattern string) error {
	if strings.Count(pattern, placeholder) != 1 {
		return fmt.Errorf("%w: placeholder %v must appear exactly once", ErrInvalidPattern, placeholder)
	}
	return nil
}

func formatPattern(pattern, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return strings.Replace(pattern, placeholder, name, 1), nil
}
