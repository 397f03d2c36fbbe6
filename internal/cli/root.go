package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	ripserext "github.com/contriboss/ripserplusplus-build"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"

	cfgFile string

	// rootCmd runs build_ext when called without subcommands
	rootCmd = &cobra.Command{
		Use:   "ripserpp-build",
		Short: "Build the ripser++ native extension with CMake",
		Long: titleStyle.Render("ripserpp-build") + ` - build the ripser++ native extension

Configures the CMake project in the current directory inside the build
temporary directory, builds it, and places the shared libraries next to
the extension output path. On Windows the auxiliary phmap.dll and
pyripser++.dll libraries are copied from the mode-named output directory.

Settings come from flags, RIPSERPP_* environment variables and an optional
ripserpp-build.yaml in the current directory.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runBuild,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./ripserpp-build.yaml)")
	flags.BoolP("verbose", "v", false, "enable debug logging and stream tool output")
	flags.String("name", ripserext.DefaultExtensionName, "logical extension name")
	flags.StringP("build-temp", "t", ripserext.DefaultBuildTemp, "directory for temporary build files")
	flags.StringP("build-lib", "b", ripserext.DefaultBuildLib, "directory the extension is placed under")
	flags.String("ext-suffix", "", "extension filename suffix (default .so, .pyd on Windows)")
	flags.String("platform", ripserext.PlatformAuto, "platform strategy: auto, primary or relocating")

	buildFlags := rootCmd.Flags()
	buildFlags.BoolP("debug", "g", false, "build in Debug mode instead of Release")
	buildFlags.BoolP("dry-run", "n", false, "compute and log the build without running it")
	buildFlags.Bool("clean-first", false, "run the clean target before building")
	buildFlags.IntP("parallel", "j", 0, "parallel build jobs (0 uses the generator default)")
	buildFlags.StringP("generator", "G", "", "CMake generator")
	buildFlags.String("cmake-args", "", "extra CMake configure arguments, shell quoted")

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(recordCmd)
}

// Execute runs the root command. It is called once by main.main.
func Execute() error {
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	)
}

// loadConfig resolves settings for cmd and builds the extension descriptor.
func loadConfig(cmd *cobra.Command) (*ripserext.Settings, *ripserext.BuildConfig, *ripserext.Extension, error) {
	settings, err := ripserext.LoadSettings(ripserext.LoadOptions{
		ConfigFile: cfgFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, nil, nil, err
	}

	config, err := settings.BuildConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	config.Logger = newLogger(cmd.ErrOrStderr(), settings.Verbose)

	ext, err := ripserext.NewExtension(settings.Name)
	if err != nil {
		return nil, nil, nil, err
	}

	return settings, config, ext, nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "build_ext"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func runBuild(cmd *cobra.Command, _ []string) error {
	_, config, ext, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := ripserext.NewBuildExt().Run(cmd.Context(), config, []*ripserext.Extension{ext})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, result := range results {
		printSummary(out, result, config.DryRun)
	}
	return nil
}

func printSummary(w io.Writer, result *ripserext.BuildResult, dryRun bool) {
	status := successStyle.Render("built")
	if dryRun {
		status = warningStyle.Render("dry run")
	}

	fmt.Fprintln(w, titleStyle.Render(result.Extension)+" "+status)
	fmt.Fprintln(w, field("mode", string(result.Mode)))
	fmt.Fprintln(w, field("configure", "cmake "+strings.Join(result.ConfigureArgs, " ")))
	fmt.Fprintln(w, field("build", "cmake "+strings.Join(result.BuildArgs, " ")))
	for _, r := range result.Relocated {
		fmt.Fprintln(w, field("relocated", r.Source+" -> "+r.DestDir))
	}
	for _, artifact := range result.Extensions {
		fmt.Fprintln(w, field("artifact", artifact))
	}
}
