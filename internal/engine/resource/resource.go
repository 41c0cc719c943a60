// Package resource provides the name-keyed shader and texture libraries.
//
// Libraries are populated once while a scene is being built and then sealed.
// After sealing they are read-only, so lookups need no locking.
package resource

import (
	"errors"
	"fmt"
	"os"
)

var (
	ErrSealed    = errors.New("library is sealed")
	ErrDuplicate = errors.New("name already registered")
)

// NotFoundError is returned when a name is absent from its library.
type NotFoundError struct {
	Kind string // "shader" or "texture"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ReadFunc loads a file by path. Libraries default to os.ReadFile.
type ReadFunc func(path string) ([]byte, error)

func readerOrDefault(read ReadFunc) ReadFunc {
	if read == nil {
		return os.ReadFile
	}
	return read
}
