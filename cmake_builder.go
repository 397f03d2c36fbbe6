package ripserext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	cmakeProgram   = "cmake"
	cmakeListsFile = "CMakeLists.txt"
)

// CMake cache variables set by the configure step.
const (
	libraryOutputDirOption = "CMAKE_LIBRARY_OUTPUT_DIRECTORY"
	buildTypeOption        = "CMAKE_BUILD_TYPE"
)

// Native library suffixes collected after a build.
var nativeLibraryExtensions = []string{".so", ".pyd", ".dll", ".dylib"}

// CMakeBuilder drives the cmake configure -> cmake --build workflow.
type CMakeBuilder struct{}

// Name returns the builder name
func (b *CMakeBuilder) Name() string {
	return "CMake"
}

// RequiredTools returns the tools needed for CMake builds
func (b *CMakeBuilder) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:    cmakeProgram,
			Purpose: "CMake build system",
		},
	}
}

// CheckTools verifies that cmake is available
func (b *CMakeBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// CanBuild checks that the source root has a CMakeLists.txt
func (b *CMakeBuilder) CanBuild(sourceRoot string) bool {
	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && MatchesPattern(entry.Name(), `^CMakeLists\.txt$`) {
			return true
		}
	}
	return false
}

// Build compiles the extension using the cmake -> cmake --build workflow
func (b *CMakeBuilder) Build(ctx context.Context, config *BuildConfig, ext *Extension) (*BuildResult, error) {
	return runCommonBuild(ctx, config, ext, CommonBuildSteps{
		ArgsFunc:      b.computeArguments,
		ConfigureFunc: b.configure,
		BuildFunc:     b.build,
		RelocateFunc:  relocateArtifacts,
		FindFunc:      b.findBuiltExtensions,
	})
}

// Clean runs the clean target in the build-temporary directory
func (b *CMakeBuilder) Clean(ctx context.Context, config *BuildConfig, ext *Extension) error {
	cwd, err := getwd()
	if err != nil {
		return fmt.Errorf("capturing working directory: %w", err)
	}
	buildTemp := resolvePath(cwd, config.BuildTemp, DefaultBuildTemp)
	logger := config.logger()

	if _, err := os.Stat(filepath.Join(buildTemp, "CMakeCache.txt")); errors.Is(err, os.ErrNotExist) {
		logger.Debug("nothing to clean", "build_temp", buildTemp)
		return nil
	}

	runner := config.runner(logger)

	return withWorkDir(cwd, buildTemp, func() error {
		cmd := Command{Name: cmakeProgram, Args: []string{"--build", ".", "--target", "clean"}, Env: config.Env}
		logger.Info("cleaning", "extension", ext.Name, "build_temp", buildTemp)
		output, err := runner.Run(ctx, cmd)
		if err != nil {
			return &BuildError{Tool: "cmake --build --target clean", Args: cmd.Args, Output: output, Err: err}
		}
		return nil
	})
}

// computeArguments selects the build mode from config.Debug and threads it
// into both argument lists.
func (b *CMakeBuilder) computeArguments(bc *BuildContext, config *BuildConfig) {
	bc.Mode = ModeFor(config.Debug)
	mode := string(bc.Mode)

	// Artifacts land one level above the extension path
	outputDir := filepath.Dir(bc.ExtensionDir)

	configureArgs := []string{
		bc.Cwd,
		fmt.Sprintf("-D%s=%s", libraryOutputDirOption, outputDir),
		fmt.Sprintf("-D%s=%s", buildTypeOption, mode),
	}

	if config.Generator != "" {
		configureArgs = append(configureArgs, "-G", config.Generator)
	}

	configureArgs = append(configureArgs, config.CMakeArgs...)

	// Multi-config generators pick the mode at build time
	buildArgs := []string{"--build", ".", "--config", mode}

	if config.Parallel > 0 {
		buildArgs = append(buildArgs, "--parallel", strconv.Itoa(config.Parallel))
	}

	bc.ConfigureArgs = configureArgs
	bc.BuildArgs = buildArgs
}

// configure runs cmake against the captured source root
func (b *CMakeBuilder) configure(ctx context.Context, bc *BuildContext, result *BuildResult) error {
	cmd := Command{Name: cmakeProgram, Args: bc.ConfigureArgs, Env: bc.Env}

	bc.Logger.Info("configuring", "extension", bc.Extension.Name, "mode", bc.Mode, "build_temp", bc.BuildTemp)
	bc.Logger.Debug("running", "cmd", cmd.String())

	output, err := bc.Runner.Run(ctx, cmd)
	result.Output = append(result.Output, output...)
	if err != nil {
		return &ConfigurationError{Tool: cmakeProgram, Args: cmd.Args, Output: output, Err: err}
	}

	return nil
}

// build runs cmake --build in the current directory
func (b *CMakeBuilder) build(ctx context.Context, bc *BuildContext, result *BuildResult) error {
	if bc.DryRun {
		bc.Logger.Info("dry run, skipping build", "extension", bc.Extension.Name)
		return nil
	}

	// Clean first if requested
	if bc.CleanFirst {
		cleanCmd := Command{Name: cmakeProgram, Args: []string{"--build", ".", "--target", "clean"}, Env: bc.Env}
		cleanOutput, err := bc.Runner.Run(ctx, cleanCmd)
		result.Output = append(result.Output, cleanOutput...)
		if err != nil {
			return &BuildError{Tool: "cmake --build --target clean", Args: cleanCmd.Args, Output: cleanOutput, Err: err}
		}
	}

	cmd := Command{Name: cmakeProgram, Args: bc.BuildArgs, Env: bc.Env}

	bc.Logger.Info("building", "extension", bc.Extension.Name, "mode", bc.Mode)
	bc.Logger.Debug("running", "cmd", cmd.String())

	output, err := bc.Runner.Run(ctx, cmd)
	result.Output = append(result.Output, output...)
	if err != nil {
		return &BuildError{Tool: "cmake --build", Args: cmd.Args, Output: output, Err: err}
	}

	return nil
}

// findBuiltExtensions lists native libraries in the extension's parent
// directory
func (b *CMakeBuilder) findBuiltExtensions(bc *BuildContext) ([]string, error) {
	if bc.DryRun {
		return nil, nil
	}

	outputDir := filepath.Dir(bc.ExtensionDir)
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", outputDir, err)
	}

	var extensions []string
	for _, entry := range entries {
		if entry.IsDir() || !MatchesExtension(entry.Name(), nativeLibraryExtensions...) {
			continue
		}
		extensions = append(extensions, filepath.Join(outputDir, entry.Name()))
	}

	return extensions, nil
}
