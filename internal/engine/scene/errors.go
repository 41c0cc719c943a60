package scene

import (
	"errors"
	"fmt"
)

// ErrNoMeshes is wrapped by LoadError when a source parses but yields no meshes.
var ErrNoMeshes = errors.New("source contains no meshes")

// LoadError reports a mesh source that could not be turned into an object.
type LoadError struct {
	Path string // empty for array-built geometry
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load mesh: %v", e.Err)
	}
	return fmt.Sprintf("load mesh %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ConfigurationError reports a scene operation performed in the wrong phase,
// such as binding a shader to an object that has already been finalized.
type ConfigurationError struct {
	Op     string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func sealedError(op string) error {
	return &ConfigurationError{Op: op, Reason: "object is finalized"}
}
