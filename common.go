package ripserext

import (
	"context"
)

// runCommonBuild executes one orchestration run for ext.
//
// # Process Flow
//
//  1. Prepare: capture the working directory, create the build directories
//  2. ArgsFunc: select the build mode, compute configure and build arguments
//  3. Enter the build-temporary directory
//  4. ConfigureFunc, then BuildFunc
//  5. Restore the captured working directory (always, also on failure)
//  6. RelocateFunc: platform-specific artifact copies
//  7. FindFunc: locate the produced native libraries
//  8. Write the build record (skipped in dry run)
//
// If any step fails, processing stops and the error is returned with
// Success=false. Nothing is retried and no partial output is removed.
func runCommonBuild(ctx context.Context, config *BuildConfig, ext *Extension, steps CommonBuildSteps) (*BuildResult, error) {
	result := &BuildResult{
		Extension: ext.Name,
		Success:   false,
		Output:    []string{},
	}

	fail := func(err error) (*BuildResult, error) {
		result.Error = err
		return result, err
	}

	// Step 1: Prepare directories
	bc, err := Prepare(config, ext)
	if err != nil {
		return fail(err)
	}

	// Step 2: Arguments, one mode for both invocations
	steps.ArgsFunc(bc, config)
	result.Mode = bc.Mode
	result.ConfigureArgs = append([]string{}, bc.ConfigureArgs...)
	result.BuildArgs = append([]string{}, bc.BuildArgs...)

	// Steps 3-5: Configure and build inside the build-temporary directory
	err = withWorkDir(bc.Cwd, bc.BuildTemp, func() error {
		if err := steps.ConfigureFunc(ctx, bc, result); err != nil {
			return err
		}
		return steps.BuildFunc(ctx, bc, result)
	})
	if err != nil {
		bc.Logger.Error("build failed", "extension", ext.Name, "err", err)
		return fail(err)
	}

	// Step 6: Relocate platform artifacts
	if err := steps.RelocateFunc(ctx, bc, result); err != nil {
		bc.Logger.Error("relocation failed", "extension", ext.Name, "err", err)
		return fail(err)
	}

	// Step 7: Find the built libraries
	extensions, err := steps.FindFunc(bc)
	if err != nil {
		return fail(err)
	}
	result.Extensions = extensions

	// Step 8: Record the run
	if !bc.DryRun {
		if err := writeBuildRecord(bc, result); err != nil {
			return fail(err)
		}
	}

	result.Success = true
	bc.Logger.Info("extension built", "extension", ext.Name, "mode", bc.Mode, "dir", bc.ExtensionDir)
	return result, nil
}
