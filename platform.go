package ripserext

import (
	"fmt"
	"path/filepath"
	"strings"
)

const platformWindows = "windows"

// Platform names accepted by PlatformByName.
const (
	PlatformAuto       = "auto"
	PlatformPrimary    = "primary"
	PlatformRelocating = "relocating"
)

// RelocatedArtifacts are the auxiliary libraries the Windows CMake build
// leaves in its mode-named output directory. The list is fixed: a CMake
// change that renames them must surface as ArtifactNotFoundError.
var RelocatedArtifacts = []string{"phmap.dll", "pyripser++.dll"}

// Platform is the host-specific part of an orchestration run.
//
// A Platform is selected once per run. Implementations must be stateless.
type Platform interface {
	// Name returns the strategy name used in logs and build records.
	Name() string

	// ExtSuffix returns the default filename suffix of the compiled extension.
	ExtSuffix() string

	// Relocations lists the copies required after a successful build.
	Relocations(bc *BuildContext) []ArtifactRelocation
}

// ArtifactRelocation is one binary artifact copied after the build.
type ArtifactRelocation struct {
	Source  string `yaml:"source"`
	DestDir string `yaml:"dest_dir"`
}

// Dest returns the destination file path.
func (r ArtifactRelocation) Dest() string {
	return filepath.Join(r.DestDir, filepath.Base(r.Source))
}

// PrimaryPlatform is a host where CMake places every library in the
// extension output directory already.
type PrimaryPlatform struct{}

// Name returns the strategy name.
func (PrimaryPlatform) Name() string { return PlatformPrimary }

// ExtSuffix returns ".so".
func (PrimaryPlatform) ExtSuffix() string { return ".so" }

// Relocations returns nil.
func (PrimaryPlatform) Relocations(*BuildContext) []ArtifactRelocation { return nil }

// ArtifactRelocatingPlatform is a host whose multi-config generator writes
// auxiliary libraries to <build-temp>/<mode>/ instead of the library output
// directory.
type ArtifactRelocatingPlatform struct {
	Artifacts []string
}

// NewArtifactRelocatingPlatform returns the Windows strategy with the fixed
// artifact list.
func NewArtifactRelocatingPlatform() *ArtifactRelocatingPlatform {
	return &ArtifactRelocatingPlatform{Artifacts: append([]string{}, RelocatedArtifacts...)}
}

// Name returns the strategy name.
func (p *ArtifactRelocatingPlatform) Name() string { return PlatformRelocating }

// ExtSuffix returns ".pyd".
func (p *ArtifactRelocatingPlatform) ExtSuffix() string { return ".pyd" }

// Relocations maps each artifact from the mode directory to the parent of
// the extension output directory.
func (p *ArtifactRelocatingPlatform) Relocations(bc *BuildContext) []ArtifactRelocation {
	destDir := filepath.Dir(bc.ExtensionDir)
	srcDir := filepath.Join(bc.BuildTemp, string(bc.Mode))

	relocations := make([]ArtifactRelocation, 0, len(p.Artifacts))
	for _, name := range p.Artifacts {
		relocations = append(relocations, ArtifactRelocation{
			Source:  filepath.Join(srcDir, name),
			DestDir: destDir,
		})
	}
	return relocations
}

// DetectPlatform selects the strategy for goos.
func DetectPlatform(goos string) Platform {
	if goos == platformWindows {
		return NewArtifactRelocatingPlatform()
	}
	return PrimaryPlatform{}
}

// PlatformByName resolves a configured platform name. "auto" and the empty
// string detect from goos.
func PlatformByName(name, goos string) (Platform, error) {
	switch strings.ToLower(name) {
	case "", PlatformAuto:
		return DetectPlatform(goos), nil
	case PlatformPrimary:
		return PrimaryPlatform{}, nil
	case PlatformRelocating, platformWindows:
		return NewArtifactRelocatingPlatform(), nil
	default:
		return nil, fmt.Errorf("unknown platform %q (want auto, primary or relocating)", name)
	}
}
