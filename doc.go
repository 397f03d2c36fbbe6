// Package ripserext builds the native ripser++ extension for packaging.
//
// This package is the Go equivalent of a setuptools build_ext command that
// drives CMake: it validates the host, stages the build directories, runs the
// CMake configure and build steps, and relocates auxiliary shared libraries on
// platforms where CMake does not deliver them next to the extension.
//
// # Basic Usage
//
// Declare the extension and run the command:
//
//	ext, err := ripserext.NewExtension("ripserplusplus/ripserplusplus")
//	if err != nil {
//	    return err // *UnsupportedArchitectureError on 32-bit hosts
//	}
//
//	config := &ripserext.BuildConfig{
//	    BuildTemp: "build/temp",
//	    BuildLib:  "build/lib",
//	    Debug:     false,
//	}
//
//	results, err := ripserext.NewBuildExt().Run(ctx, config, []*ripserext.Extension{ext})
//
// # Orchestration
//
// Each extension goes through one linear run:
//
//	validate -> prepare -> configure -> build -> relocate -> done
//
// Any failing step ends the run. The process working directory is entered for
// configure and build and is restored on every exit path, so two runs must
// not share a process concurrently.
//
// # Errors
//
// Failures are reported as *UnsupportedArchitectureError, *ConfigurationError,
// *BuildError or *ArtifactNotFoundError and can be matched with errors.As.
//
// # Platform Support
//
// 64-bit hosts only. Linux is the primary platform; other systems build with
// reduced guarantees. On Windows the phmap.dll and pyripser++.dll libraries are
// copied from the mode-named CMake output directory next to the extension.
package ripserext
