package execshell

import (
	"errors"
	"fmt"
	"os/exec"
)

const (
	toolNotFoundTemplateConstant = "%s not found on PATH: %w"
)

// ErrToolNotFound indicates that an executable could not be located.
var ErrToolNotFound = errors.New("tool not found")

// ToolLocator resolves executables to absolute paths.
type ToolLocator interface {
	LookPath(name string) (string, error)
}

// OSToolLocator resolves executables using the PATH environment variable.
type OSToolLocator struct{}

// NewOSToolLocator constructs a PATH-backed tool locator.
func NewOSToolLocator() OSToolLocator {
	return OSToolLocator{}
}

// LookPath resolves name using exec.LookPath and wraps lookup failures with ErrToolNotFound.
func (OSToolLocator) LookPath(name string) (string, error) {
	resolvedPath, lookupError := exec.LookPath(name)
	if lookupError != nil {
		return "", fmt.Errorf(toolNotFoundTemplateConstant, name, errors.Join(ErrToolNotFound, lookupError))
	}
	return resolvedPath, nil
}
