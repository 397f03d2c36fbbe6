package ripserext

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"mvdan.cc/sh/v3/shell"
)

const (
	// ConfigFileName is the name of the optional config file (without extension).
	ConfigFileName = "ripserpp-build"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"
	// EnvPrefix prefixes the environment variables read by LoadSettings.
	EnvPrefix = "RIPSERPP"
)

// Settings is the user-facing configuration of a build_ext invocation.
type Settings struct {
	Name       string `mapstructure:"name"`
	BuildTemp  string `mapstructure:"build_temp"`
	BuildLib   string `mapstructure:"build_lib"`
	ExtSuffix  string `mapstructure:"ext_suffix"`
	Debug      bool   `mapstructure:"debug"`
	DryRun     bool   `mapstructure:"dry_run"`
	Verbose    bool   `mapstructure:"verbose"`
	CleanFirst bool   `mapstructure:"clean_first"`
	Parallel   int    `mapstructure:"parallel"`
	Generator  string `mapstructure:"generator"`
	CMakeArgs  string `mapstructure:"cmake_args"`
	Platform   string `mapstructure:"platform"`
}

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFile forces loading from a specific file when set.
	ConfigFile string
	// Flags are bound over file and environment values when set.
	Flags *pflag.FlagSet
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() *Settings {
	return &Settings{
		Name:      DefaultExtensionName,
		BuildTemp: DefaultBuildTemp,
		BuildLib:  DefaultBuildLib,
		Platform:  PlatformAuto,
	}
}

// LoadSettings layers defaults, the config file, the environment and flags.
//
// Without LoadOptions.ConfigFile, ripserpp-build.yaml in the working
// directory is read when present. Environment variables use the RIPSERPP_
// prefix (RIPSERPP_DEBUG, RIPSERPP_BUILD_TEMP, ...); CMAKE_ARGS,
// CMAKE_GENERATOR and CMAKE_BUILD_PARALLEL_LEVEL are honored as fallbacks.
func LoadSettings(opts LoadOptions) (*Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("name", defaults.Name)
	v.SetDefault("build_temp", defaults.BuildTemp)
	v.SetDefault("build_lib", defaults.BuildLib)
	v.SetDefault("ext_suffix", defaults.ExtSuffix)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("dry_run", defaults.DryRun)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("clean_first", defaults.CleanFirst)
	v.SetDefault("parallel", defaults.Parallel)
	v.SetDefault("generator", defaults.Generator)
	v.SetDefault("cmake_args", defaults.CMakeArgs)
	v.SetDefault("platform", defaults.Platform)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, fallback := range map[string]string{
		"cmake_args": "CMAKE_ARGS",
		"generator":  "CMAKE_GENERATOR",
		"parallel":   "CMAKE_BUILD_PARALLEL_LEVEL",
	} {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), fallback); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &settings, nil
}

// bindFlags binds every flag whose name, with dashes as underscores, is a
// settings key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !isSettingsKey(key) {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("binding flag --%s: %w", f.Name, err)
		}
	})
	return bindErr
}

func isSettingsKey(key string) bool {
	switch key {
	case "name", "build_temp", "build_lib", "ext_suffix", "debug", "dry_run", "verbose",
		"clean_first", "parallel", "generator", "cmake_args", "platform":
		return true
	}
	return false
}

// BuildConfig converts the settings into a BuildConfig. CMakeArgs is split
// with shell quoting rules, so -DFOO="a b" stays one argument.
func (s *Settings) BuildConfig() (*BuildConfig, error) {
	cmakeArgs, err := SplitCMakeArgs(s.CMakeArgs)
	if err != nil {
		return nil, err
	}

	platform, err := PlatformByName(s.Platform, runtime.GOOS)
	if err != nil {
		return nil, err
	}

	if s.Parallel < 0 {
		return nil, fmt.Errorf("parallel must not be negative, got %d", s.Parallel)
	}

	return &BuildConfig{
		BuildTemp:  s.BuildTemp,
		BuildLib:   s.BuildLib,
		ExtSuffix:  s.ExtSuffix,
		Generator:  s.Generator,
		CMakeArgs:  cmakeArgs,
		Debug:      s.Debug,
		DryRun:     s.DryRun,
		Verbose:    s.Verbose,
		CleanFirst: s.CleanFirst,
		Parallel:   s.Parallel,
		Platform:   platform,
	}, nil
}

// SplitCMakeArgs splits a CMAKE_ARGS style string into arguments. $VAR
// references expand from the process environment.
func SplitCMakeArgs(args string) ([]string, error) {
	if strings.TrimSpace(args) == "" {
		return nil, nil
	}
	fields, err := shell.Fields(args, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing cmake args %q: %w", args, err)
	}
	return fields, nil
}
