package ripserext

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchesPattern checks if a filename matches any of the given regex patterns.
//
// # Parameters
//
//   - filename: The file to check (typically just the base name)
//   - patterns: One or more regex patterns to match against
//
// # Returns
//
// Returns true if the filename matches any pattern, false otherwise.
// If a pattern is invalid regex, it is silently skipped.
//
// # Example
//
//	if MatchesPattern(filename, `^CMakeLists\.txt$`) {
//	    // Handle a CMake source root
//	}
func MatchesPattern(filename string, patterns ...string) bool {
	for _, pattern := range patterns {
		if matched, _ := regexp.MatchString(pattern, filename); matched {
			return true
		}
	}
	return false
}

// MatchesExtension checks if a filename has any of the given extensions.
//
// This is a case-insensitive check, used for compiled libraries
// (.so, .pyd, .dll, .dylib). Extensions work with or without leading dot.
func MatchesExtension(filename string, extensions ...string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// formatToolFailure formats an external tool failure with its output.
//
// # Format
//
// With error and output:
//
//	cmake --build failed: exit status 2
//
//	Build output:
//	[ 50%] Building CUDA object ...
//	nvcc fatal : Unsupported gpu architecture
//
// With error but no output:
//
//	cmake --build failed: exit status 2
func formatToolFailure(tool string, output []string, err error) string {
	outputStr := strings.TrimRight(strings.Join(output, "\n"), "\n")

	var prefix string
	if err != nil {
		prefix = fmt.Sprintf("%s failed: %v", tool, err)
	} else {
		prefix = fmt.Sprintf("%s failed", tool)
	}

	if outputStr != "" {
		return fmt.Sprintf("%s\n\nBuild output:\n%s", prefix, outputStr)
	}

	return prefix
}

// outputLines splits captured process output into lines, dropping the
// trailing empty line a final newline produces.
func outputLines(output string) []string {
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return nil
	}
	return strings.Split(output, "\n")
}
