package ripserext

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// BuildRecordFile is the name of the record written into the build-temporary
// directory after a successful run.
const BuildRecordFile = "build-record.yaml"

// BuildRecord summarizes a completed run.
type BuildRecord struct {
	Extension     string               `yaml:"extension"`
	Mode          BuildMode            `yaml:"mode"`
	Platform      string               `yaml:"platform"`
	SourceRoot    string               `yaml:"source_root"`
	BuildTemp     string               `yaml:"build_temp"`
	ExtensionDir  string               `yaml:"extension_dir"`
	ConfigureArgs []string             `yaml:"configure_args"`
	BuildArgs     []string             `yaml:"build_args"`
	Relocated     []ArtifactRelocation `yaml:"relocated,omitempty"`
	Artifacts     []string             `yaml:"artifacts,omitempty"`
	FinishedAt    time.Time            `yaml:"finished_at"`
}

// now is overridden in tests.
var now = time.Now

func writeBuildRecord(bc *BuildContext, result *BuildResult) error {
	record := BuildRecord{
		Extension:     bc.Extension.Name,
		Mode:          bc.Mode,
		Platform:      bc.Platform.Name(),
		SourceRoot:    bc.Cwd,
		BuildTemp:     bc.BuildTemp,
		ExtensionDir:  bc.ExtensionDir,
		ConfigureArgs: result.ConfigureArgs,
		BuildArgs:     result.BuildArgs,
		Relocated:     result.Relocated,
		Artifacts:     result.Extensions,
		FinishedAt:    now().UTC(),
	}

	data, err := yaml.Marshal(&record)
	if err != nil {
		return fmt.Errorf("marshaling build record: %w", err)
	}

	path := filepath.Join(bc.BuildTemp, BuildRecordFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing build record: %w", err)
	}

	bc.Logger.Debug("wrote build record", "path", path)
	return nil
}

// ReadBuildRecord loads the record left in buildTemp by the last successful run.
func ReadBuildRecord(buildTemp string) (*BuildRecord, error) {
	data, err := os.ReadFile(filepath.Join(buildTemp, BuildRecordFile))
	if err != nil {
		return nil, fmt.Errorf("reading build record: %w", err)
	}

	var record BuildRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing build record: %w", err)
	}

	return &record, nil
}
