package ripserext

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// Default directories, relative to the source root.
var (
	DefaultBuildTemp = filepath.Join("build", "temp")
	DefaultBuildLib  = filepath.Join("build", "lib")
)

// BuildMode selects optimization and symbol settings of the CMake build.
type BuildMode string

// Build modes.
const (
	ModeDebug   BuildMode = "Debug"
	ModeRelease BuildMode = "Release"
)

// ModeFor returns Debug when debug is set and Release otherwise.
func ModeFor(debug bool) BuildMode {
	if debug {
		return ModeDebug
	}
	return ModeRelease
}

// BuildContext is the working state of one orchestration run. It is created
// by Prepare and discarded when the run ends.
type BuildContext struct {
	Extension *Extension

	Cwd          string // Working directory captured before any change; the CMake source root
	BuildTemp    string // Absolute build-temporary directory
	ExtensionDir string // Absolute extension output path

	Mode          BuildMode
	ConfigureArgs []string
	BuildArgs     []string

	DryRun     bool
	CleanFirst bool
	Env        map[string]string
	Platform   Platform
	Runner     ProcessRunner
	Logger     *log.Logger
}

// Prepare captures the working directory and creates the build-temporary and
// extension output directories, including missing parents. Calling it again
// for the same paths is harmless.
func Prepare(config *BuildConfig, ext *Extension) (*BuildContext, error) {
	cwd, err := getwd()
	if err != nil {
		return nil, fmt.Errorf("capturing working directory: %w", err)
	}
	cwd, err = filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	platform := config.platform()
	logger := config.logger()

	suffix := config.ExtSuffix
	if suffix == "" {
		suffix = platform.ExtSuffix()
	}

	bc := &BuildContext{
		Extension:    ext,
		Cwd:          cwd,
		BuildTemp:    resolvePath(cwd, config.BuildTemp, DefaultBuildTemp),
		ExtensionDir: ExtensionPath(resolvePath(cwd, config.BuildLib, DefaultBuildLib), ext.Name, suffix),
		DryRun:       config.DryRun,
		CleanFirst:   config.CleanFirst,
		Env:          config.Env,
		Platform:     platform,
		Runner:       config.runner(logger),
		Logger:       logger,
	}

	for _, dir := range []string{bc.BuildTemp, bc.ExtensionDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	logger.Debug("prepared build directories",
		"cwd", bc.Cwd, "build_temp", bc.BuildTemp, "extension_dir", bc.ExtensionDir)

	return bc, nil
}

// ExtensionPath returns the full path of the compiled extension name under
// buildLib: the slash-separated name becomes nested directories and suffix
// is appended to the last element.
func ExtensionPath(buildLib, name, suffix string) string {
	return filepath.Join(buildLib, filepath.FromSlash(name)+suffix)
}

func resolvePath(base, path, def string) string {
	if path == "" {
		path = def
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path)
}

func (c *BuildConfig) platform() Platform {
	if c.Platform != nil {
		return c.Platform
	}
	return DetectPlatform(runtime.GOOS)
}

func (c *BuildConfig) logger() *log.Logger {
	logger := c.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "build_ext"})
		c.Logger = logger
	}
	if c.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func (c *BuildConfig) runner(logger *log.Logger) ProcessRunner {
	if c.DryRun {
		if dr, ok := c.Runner.(*DryRunRunner); ok {
			return dr
		}
		return &DryRunRunner{Logger: logger}
	}
	if c.Runner != nil {
		return c.Runner
	}
	if c.Verbose {
		return &ShRunner{Stream: os.Stderr}
	}
	return &ShRunner{}
}
