package ripserext

import (
	"fmt"
	"strings"
)

// UnsupportedArchitectureError reports a host whose pointer width cannot
// produce a valid artifact.
type UnsupportedArchitectureError struct {
	PointerWidth int
}

func (e *UnsupportedArchitectureError) Error() string {
	return fmt.Sprintf("requires a %d-bit architecture, host pointer width is %d bits",
		RequiredPointerWidth, e.PointerWidth)
}

// ConfigurationError reports a configure invocation that failed or whose
// tool could not be located.
type ConfigurationError struct {
	Tool   string
	Args   []string
	Output []string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return formatToolFailure(e.Tool+" configure", e.Output, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// BuildError reports a build invocation that exited with a failure status.
type BuildError struct {
	Tool   string
	Args   []string
	Output []string
	Err    error
}

func (e *BuildError) Error() string {
	return formatToolFailure(e.Tool, e.Output, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// ArtifactNotFoundError reports an expected post-build artifact that is
// missing, usually because the CMake output layout changed.
type ArtifactNotFoundError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("artifact %s not found at %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactNotFoundError) Unwrap() error { return e.Err }

// commandLine renders a tool invocation for messages.
func commandLine(tool string, args []string) string {
	if len(args) == 0 {
		return tool
	}
	return tool + " " + strings.Join(args, " ")
}
