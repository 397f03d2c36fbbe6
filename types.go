package ripserext

import (
	"context"

	"github.com/charmbracelet/log"
)

// BuildResult contains the output and status of one orchestration run.
//
// After a run completes, this structure provides:
//   - Success status indicating if every step completed
//   - The build mode and the exact arguments issued to CMake
//   - Relocations performed by the platform strategy
//   - Output lines captured from the external tools
//   - Error information if the run failed
type BuildResult struct {
	Extension     string               // Logical extension name
	Success       bool                 // True if the run reached DONE
	Mode          BuildMode            // Debug or Release
	ConfigureArgs []string             // Arguments passed to the configure invocation
	BuildArgs     []string             // Arguments passed to the build invocation
	Relocated     []ArtifactRelocation // Copies performed after the build
	Extensions    []string             // Native libraries found next to the extension
	Output        []string             // Lines of output from the external tools
	Error         error                // Error if the run failed, nil otherwise
}

// BuildConfig contains configuration for the build process.
//
// Paths:
//   - BuildTemp: scratch directory handed to CMake as its binary dir
//   - BuildLib: root of the distribution tree the extension lands in
//   - ExtSuffix: filename suffix of the compiled extension (".so", ".pyd")
//
// Relative paths resolve against the working directory captured at prepare
// time, which is also the CMake source root.
//
// Collaborators left nil are replaced with defaults: the platform detected
// from runtime.GOOS, a ShRunner executing tools directly, and a
// charmbracelet logger writing to stderr.
type BuildConfig struct {
	// Paths
	BuildTemp string // Build-temporary directory
	BuildLib  string // Distribution root for the extension output directory
	ExtSuffix string // Extension filename suffix, platform default when empty

	// CMake arguments
	Generator string            // Optional CMake generator (-G)
	CMakeArgs []string          // Extra configure arguments
	Env       map[string]string // Environment variables for the external tools

	// Build options
	Debug      bool // Debug instead of Release
	DryRun     bool // Compute and log everything, execute nothing
	Verbose    bool // Debug-level logging
	CleanFirst bool // Run the clean target before building
	Parallel   int  // cmake --build --parallel N (0 = tool default)

	// Collaborators
	Platform Platform      // Platform strategy, detected when nil
	Runner   ProcessRunner // External process runner, ShRunner when nil
	Logger   *log.Logger   // Run logger, stderr logger when nil
}

// CommonBuildSteps defines the step functions of one orchestration run.
//
// The sequencing around them (prepare, working directory scoping, failure
// short-circuit) is shared; see runCommonBuild.
type CommonBuildSteps struct {
	// ArgsFunc selects the build mode and computes the configure and build arguments.
	ArgsFunc func(bc *BuildContext, config *BuildConfig)

	// ConfigureFunc runs the configure tool inside the build-temporary directory.
	ConfigureFunc func(ctx context.Context, bc *BuildContext, result *BuildResult) error

	// BuildFunc runs the build tool inside the build-temporary directory.
	BuildFunc func(ctx context.Context, bc *BuildContext, result *BuildResult) error

	// RelocateFunc moves platform-specific artifacts after the build.
	RelocateFunc func(ctx context.Context, bc *BuildContext, result *BuildResult) error

	// FindFunc locates the native libraries the run produced.
	FindFunc func(bc *BuildContext) ([]string, error)
}
