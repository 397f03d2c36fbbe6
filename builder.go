package ripserext

import "context"

// Builder defines the interface of a native extension builder.
//
// CMakeBuilder is the implementation used by BuildExt; the interface lets
// callers wrap or replace it.
//
// # Builder Lifecycle
//
//  1. CanBuild() - BuildExt checks the source root before the run
//  2. Build() - one orchestration run per extension
//  3. Clean() - optional cleanup of build artifacts
//
// # Thread Safety
//
// Builders are stateless, but a Build changes the process working directory
// and must not run concurrently with another Build in the same process.
type Builder interface {
	// Name returns the human-readable name of this builder.
	//
	// This name is used in error messages and logs.
	Name() string

	// CanBuild reports whether sourceRoot carries the build configuration
	// this builder drives.
	CanBuild(sourceRoot string) bool

	// Build runs validate-to-done for ext and returns the result.
	//
	// Returns:
	//   - BuildResult with Success=true on success
	//   - BuildResult with Success=false and Error on failure
	Build(ctx context.Context, config *BuildConfig, ext *Extension) (*BuildResult, error)

	// Clean removes build artifacts from the build-temporary directory.
	//
	// Returns nil if there is nothing to clean.
	Clean(ctx context.Context, config *BuildConfig, ext *Extension) error
}
