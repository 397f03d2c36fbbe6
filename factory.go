package ripserext

import (
	"context"
	"fmt"
)

// BuildExt is the build action exposed to the packaging workflow.
//
// It builds every declared extension in order with one Builder, the way a
// setuptools build_ext command runs its CMake step per extension.
//
// # Usage
//
//	cmd := ripserext.NewBuildExt()
//	results, err := cmd.Run(ctx, config, extensions)
//
// # Error Handling
//
// Every error is fatal: Run stops at the first failed extension and
// returns the results collected so far together with that error.
//
// # Thread Safety
//
// Runs change the process working directory; do not run two BuildExt
// commands concurrently in one process.
type BuildExt struct {
	builder Builder
}

// NewBuildExt creates a command backed by CMakeBuilder.
func NewBuildExt() *BuildExt {
	return NewBuildExtWith(&CMakeBuilder{})
}

// NewBuildExtWith creates a command backed by builder.
func NewBuildExtWith(builder Builder) *BuildExt {
	return &BuildExt{builder: builder}
}

// Builder returns the builder the command uses.
func (c *BuildExt) Builder() Builder {
	return c.builder
}

// Run builds all extensions in sequence.
//
// Before the first extension it checks that the working directory is a
// source root the builder can handle and, for real runs with the default
// runner, that the builder's tools are on PATH. Both failures are reported
// as *ConfigurationError.
//
// # Context Cancellation
//
// The context is checked between extensions and before each external
// invocation. A running tool is not interrupted.
func (c *BuildExt) Run(ctx context.Context, config *BuildConfig, extensions []*Extension) ([]*BuildResult, error) {
	if len(extensions) == 0 {
		return nil, nil
	}

	if err := c.preflight(config); err != nil {
		return []*BuildResult{{Extension: extensions[0].Name, Error: err}}, err
	}

	var results []*BuildResult

	for _, ext := range extensions {
		// Check for context cancellation
		if ctxErr := ctx.Err(); ctxErr != nil {
			results = append(results, &BuildResult{
				Extension: ext.Name,
				Success:   false,
				Error:     ctxErr,
			})
			return results, ctxErr
		}

		result, err := c.builder.Build(ctx, config, ext)
		if err != nil {
			// Ensure we have a result even if builder didn't return one
			if result == nil {
				result = &BuildResult{
					Extension: ext.Name,
					Success:   false,
					Error:     err,
				}
			}
			results = append(results, result)
			return results, err
		}

		results = append(results, result)
	}

	return results, nil
}

// Clean runs the builder's clean step for every extension.
func (c *BuildExt) Clean(ctx context.Context, config *BuildConfig, extensions []*Extension) error {
	for _, ext := range extensions {
		if err := c.builder.Clean(ctx, config, ext); err != nil {
			return fmt.Errorf("cleaning %s: %w", ext.Name, err)
		}
	}
	return nil
}

func (c *BuildExt) preflight(config *BuildConfig) error {
	cwd, err := getwd()
	if err != nil {
		return fmt.Errorf("capturing working directory: %w", err)
	}

	if !c.builder.CanBuild(cwd) {
		return &ConfigurationError{
			Tool: c.builder.Name(),
			Err:  fmt.Errorf("%s has no %s", cwd, cmakeListsFile),
		}
	}

	if config.DryRun || config.Runner != nil {
		return nil
	}

	if checker, ok := c.builder.(ToolChecker); ok {
		if err := checker.CheckTools(); err != nil {
			return &ConfigurationError{
				Tool: c.builder.Name(),
				Err:  fmt.Errorf("%w: %v", ErrToolNotFound, err),
			}
		}
	}

	return nil
}
