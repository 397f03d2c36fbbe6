package ripserext

import (
	"fmt"
	"os/exec"
	"strings"
)

// execLookPath is overridden in tests.
var execLookPath = exec.LookPath

// ToolChecker is implemented by builders that depend on external tools.
//
// BuildExt checks the tools of a ToolChecker builder before the first
// configure, so a missing cmake fails fast as a ConfigurationError instead of
// surfacing from the runner. The check is skipped for dry runs and for
// injected runners.
type ToolChecker interface {
	// RequiredTools returns the tools this builder needs.
	RequiredTools() []ToolRequirement

	// CheckTools returns nil if every required tool is on PATH.
	// Missing optional tools are not errors.
	CheckTools() error
}

// ToolRequirement describes a build tool dependency.
//
// Tool with alternatives:
//
//	ToolRequirement{
//	    Name:         "c++",
//	    Alternatives: []string{"g++", "clang++"},
//	    Purpose:      "C++ compiler",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "cmake", "nvcc").
	Name string

	// Alternatives satisfy the requirement when Name is missing.
	Alternatives []string

	// Optional tools never fail the check.
	Optional bool

	// Purpose is a human-readable description used in error messages.
	Purpose string
}

// CheckToolAvailable checks if a tool is available in the system PATH.
//
//	if err := CheckToolAvailable("cmake"); err != nil {
//	    return fmt.Errorf("cmake is required: %w", err)
//	}
func CheckToolAvailable(tool string) error {
	if _, err := execLookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// CheckRequiredTools verifies all required tools are available.
//
// The primary name is tried first, then each alternative in order. All
// missing required tools are reported in one error:
//
//	cmake (CMake build system) not found in PATH
//	missing required tools: cmake (CMake build system), nvcc (CUDA compiler)
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil

		for _, alt := range req.Alternatives {
			if found {
				break
			}
			found = CheckToolAvailable(alt) == nil
		}

		if found || req.Optional {
			continue
		}

		if req.Purpose != "" {
			missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
		} else {
			missingTools = append(missingTools, req.Name)
		}
	}

	switch len(missingTools) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	default:
		return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
	}
}
