package ripserext

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestComputeArgumentsThreadsOneMode(t *testing.T) {
	cwd := newSourceRoot(t)

	for _, debug := range []bool{false, true} {
		t.Run(string(ModeFor(debug)), func(t *testing.T) {
			config := testConfig(&recordingRunner{}, PrimaryPlatform{})
			config.Debug = debug

			bc, err := Prepare(config, testExtension(t))
			if err != nil {
				t.Fatalf("Prepare returned error: %v", err)
			}

			(&CMakeBuilder{}).computeArguments(bc, config)

			mode := string(ModeFor(debug))
			if bc.Mode != ModeFor(debug) {
				t.Fatalf("Expected mode %s, got %s", mode, bc.Mode)
			}

			expectedConfigure := []string{
				cwd,
				"-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=" + filepath.Join(cwd, "build", "lib", "ripserplusplus"),
				"-DCMAKE_BUILD_TYPE=" + mode,
			}
			if !reflect.DeepEqual(bc.ConfigureArgs, expectedConfigure) {
				t.Errorf("configure args = %v, expected %v", bc.ConfigureArgs, expectedConfigure)
			}

			expectedBuild := []string{"--build", ".", "--config", mode}
			if !reflect.DeepEqual(bc.BuildArgs, expectedBuild) {
				t.Errorf("build args = %v, expected %v", bc.BuildArgs, expectedBuild)
			}
		})
	}
}

func TestComputeArgumentsOutputDirIsParentOfExtensionPath(t *testing.T) {
	newSourceRoot(t)

	config := testConfig(&recordingRunner{}, PrimaryPlatform{})
	bc, err := Prepare(config, testExtension(t))
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	(&CMakeBuilder{}).computeArguments(bc, config)

	notExpected := "-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=" + bc.ExtensionDir
	expected := "-DCMAKE_LIBRARY_OUTPUT_DIRECTORY=" + filepath.Dir(bc.ExtensionDir)

	if bc.ConfigureArgs[1] == notExpected {
		t.Fatalf("output directory must not be the extension path itself: %s", bc.ConfigureArgs[1])
	}
	if bc.ConfigureArgs[1] != expected {
		t.Errorf("Expected %s, got %s", expected, bc.ConfigureArgs[1])
	}
}

func TestComputeArgumentsOptionalSettings(t *testing.T) {
	newSourceRoot(t)

	config := testConfig(&recordingRunner{}, PrimaryPlatform{})
	config.Generator = "Ninja"
	config.CMakeArgs = []string{"-DCUDA_ARCH=sm_70", "-DFOO=a b"}
	config.Parallel = 4

	bc, err := Prepare(config, testExtension(t))
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	(&CMakeBuilder{}).computeArguments(bc, config)

	tail := bc.ConfigureArgs[3:]
	expectedTail := []string{"-G", "Ninja", "-DCUDA_ARCH=sm_70", "-DFOO=a b"}
	if !reflect.DeepEqual(tail, expectedTail) {
		t.Errorf("configure tail = %v, expected %v", tail, expectedTail)
	}

	expectedBuild := []string{"--build", ".", "--config", "Release", "--parallel", "4"}
	if !reflect.DeepEqual(bc.BuildArgs, expectedBuild) {
		t.Errorf("build args = %v, expected %v", bc.BuildArgs, expectedBuild)
	}
}

func TestBuildRunsToolsInBuildTemp(t *testing.T) {
	cwd := newSourceRoot(t)

	runner := &recordingRunner{}
	result, err := (&CMakeBuilder{}).Build(context.Background(), testConfig(runner, PrimaryPlatform{}), testExtension(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !result.Success {
		t.Fatal("Expected successful result")
	}

	if len(runner.commands) != 2 {
		t.Fatalf("Expected 2 invocations, got %v", runner.commands)
	}

	buildTemp := filepath.Join(cwd, "build", "temp")
	for i, dir := range runner.dirs {
		if dir != buildTemp {
			t.Errorf("invocation %d ran in %s, expected %s", i, dir, buildTemp)
		}
		if runner.commands[i].Name != "cmake" {
			t.Errorf("invocation %d used %s, expected cmake", i, runner.commands[i].Name)
		}
	}

	if !reflect.DeepEqual(runner.commands[0].Args, result.ConfigureArgs) {
		t.Errorf("configure invoked with %v, result reports %v", runner.commands[0].Args, result.ConfigureArgs)
	}
	if !reflect.DeepEqual(runner.commands[1].Args, result.BuildArgs) {
		t.Errorf("build invoked with %v, result reports %v", runner.commands[1].Args, result.BuildArgs)
	}

	wd, _ := os.Getwd()
	if wd != cwd {
		t.Errorf("working directory = %s, expected %s", wd, cwd)
	}
}

func TestConfigureFailureRestoresWorkingDirectory(t *testing.T) {
	cwd := newSourceRoot(t)

	runner := &recordingRunner{
		onRun: func(cmd Command) ([]string, error) {
			return []string{"CMake Error: could not find CUDA"}, errors.New("exit status 1")
		},
	}

	result, err := (&CMakeBuilder{}).Build(context.Background(), testConfig(runner, PrimaryPlatform{}), testExtension(t))

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if result.Success || result.Error != err {
		t.Errorf("Expected failed result carrying the error, got %+v", result)
	}
	if len(runner.commands) != 1 {
		t.Errorf("Expected build to be skipped after configure failure, got %v", runner.commands)
	}

	wd, _ := os.Getwd()
	if wd != cwd {
		t.Errorf("working directory = %s, expected %s", wd, cwd)
	}
}

func TestMissingToolIsConfigurationError(t *testing.T) {
	newSourceRoot(t)

	runner := &recordingRunner{
		onRun: func(cmd Command) ([]string, error) {
			return nil, ErrToolNotFound
		},
	}

	_, err := (&CMakeBuilder{}).Build(context.Background(), testConfig(runner, PrimaryPlatform{}), testExtension(t))

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError, got %v", err)
	}
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("Expected error to wrap ErrToolNotFound, got %v", err)
	}
}

func TestBuildFailureRestoresWorkingDirectory(t *testing.T) {
	cwd := newSourceRoot(t)

	runner := &recordingRunner{
		onRun: func(cmd Command) ([]string, error) {
			if isBuildInvocation(cmd) {
				return []string{"make: *** [all] Error 2"}, errors.New("exit status 2")
			}
			return nil, nil
		},
	}

	result, err := (&CMakeBuilder{}).Build(context.Background(), testConfig(runner, PrimaryPlatform{}), testExtension(t))

	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("Expected BuildError, got %v", err)
	}
	if len(buildErr.Output) != 1 {
		t.Errorf("Expected build output on the error, got %v", buildErr.Output)
	}
	if result.Success {
		t.Error("Expected failed result")
	}

	wd, _ := os.Getwd()
	if wd != cwd {
		t.Errorf("working directory = %s, expected %s", wd, cwd)
	}
}

func TestDryRunIssuesConfigureOnly(t *testing.T) {
	cwd := newSourceRoot(t)

	dryRunner := &DryRunRunner{}
	config := testConfig(dryRunner, NewArtifactRelocatingPlatform())
	config.DryRun = true

	result, err := (&CMakeBuilder{}).Build(context.Background(), config, testExtension(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if !result.Success {
		t.Fatal("Expected successful dry run")
	}

	commands := dryRunner.Commands()
	if len(commands) != 1 || isBuildInvocation(commands[0]) {
		t.Fatalf("Expected only the configure invocation, got %v", commands)
	}
	if len(result.Relocated) != 0 {
		t.Errorf("Expected no relocations in dry run, got %v", result.Relocated)
	}

	buildTemp := filepath.Join(cwd, "build", "temp")
	if _, err := os.Stat(filepath.Join(buildTemp, BuildRecordFile)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected no build record in dry run, stat returned %v", err)
	}

	entries, err := os.ReadDir(buildTemp)
	if err != nil {
		t.Fatalf("failed to read build temp: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty build temp after dry run, found %d entries", len(entries))
	}
}

func TestDryRunNeverCallsInjectedRunner(t *testing.T) {
	newSourceRoot(t)

	runner := &recordingRunner{}
	config := testConfig(runner, PrimaryPlatform{})
	config.DryRun = true

	if _, err := (&CMakeBuilder{}).Build(context.Background(), config, testExtension(t)); err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(runner.commands) != 0 {
		t.Errorf("Expected no executed commands in dry run, got %v", runner.commands)
	}
}

func TestCleanFirstRunsCleanTarget(t *testing.T) {
	newSourceRoot(t)

	runner := &recordingRunner{}
	config := testConfig(runner, PrimaryPlatform{})
	config.CleanFirst = true

	if _, err := (&CMakeBuilder{}).Build(context.Background(), config, testExtension(t)); err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if len(runner.commands) != 3 {
		t.Fatalf("Expected configure, clean and build, got %v", runner.commands)
	}
	expected := []string{"--build", ".", "--target", "clean"}
	if !reflect.DeepEqual(runner.commands[1].Args, expected) {
		t.Errorf("clean invoked with %v, expected %v", runner.commands[1].Args, expected)
	}
}

func TestCleanFirstFailureAbortsBuild(t *testing.T) {
	newSourceRoot(t)

	runner := &recordingRunner{onRun: func(cmd Command) ([]string, error) {
		if len(cmd.Args) == 4 && cmd.Args[3] == "clean" {
			return []string{"gmake: *** No rule to make target 'clean'"}, errors.New("exit status 2")
		}
		return nil, nil
	}}
	config := testConfig(runner, PrimaryPlatform{})
	config.CleanFirst = true

	result, err := (&CMakeBuilder{}).Build(context.Background(), config, testExtension(t))

	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("Expected BuildError, got %v", err)
	}
	if !strings.Contains(buildErr.Tool, "clean") {
		t.Errorf("Expected the clean invocation to be reported, got %s", buildErr.Tool)
	}
	if result == nil || result.Success {
		t.Errorf("Expected a failed result, got %+v", result)
	}
	if len(runner.commands) != 2 {
		t.Errorf("Expected configure and clean only, got %v", runner.commands)
	}
}

func TestCleanWithoutCache(t *testing.T) {
	newSourceRoot(t)

	runner := &recordingRunner{}
	if err := (&CMakeBuilder{}).Clean(context.Background(), testConfig(runner, PrimaryPlatform{}), testExtension(t)); err != nil {
		t.Fatalf("Clean returned error: %v", err)
	}
	if len(runner.commands) != 0 {
		t.Errorf("Expected nothing to run, got %v", runner.commands)
	}
}

func TestCleanRunsCleanTargetInBuildTemp(t *testing.T) {
	cwd := newSourceRoot(t)

	buildTemp := filepath.Join(cwd, "build", "temp")
	if err := os.MkdirAll(buildTemp, 0o755); err != nil {
		t.Fatalf("failed to create build temp: %v", err)
	}
	if err := os.WriteFile(filepath.Join(buildTemp, "CMakeCache.txt"), nil, 0o600); err != nil {
		t.Fatalf("failed to write CMakeCache.txt: %v", err)
	}

	runner := &recordingRunner{}
	if err := NewBuildExt().Clean(context.Background(), testConfig(runner, PrimaryPlatform{}), []*Extension{testExtension(t)}); err != nil {
		t.Fatalf("Clean returned error: %v", err)
	}

	if len(runner.commands) != 1 || runner.dirs[0] != buildTemp {
		t.Fatalf("Expected one clean in %s, got %v in %v", buildTemp, runner.commands, runner.dirs)
	}

	wd, _ := os.Getwd()
	if wd != cwd {
		t.Errorf("working directory = %s, expected %s", wd, cwd)
	}
}
