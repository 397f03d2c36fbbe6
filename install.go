package ripserext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
)

// copyArtifact(dst, src) copies src over dst. Overridden in tests.
var copyArtifact = sh.Copy

// relocateArtifacts copies the platform's post-build artifacts next to the
// extension output directory.
//
// Every expected source must exist after a successful build; a missing one
// is an *ArtifactNotFoundError, never skipped. Platforms without relocations
// make this a no-op, and dry runs only log the plan.
func relocateArtifacts(ctx context.Context, bc *BuildContext, result *BuildResult) error {
	relocations := bc.Platform.Relocations(bc)
	if len(relocations) == 0 {
		return nil
	}

	if bc.DryRun {
		for _, r := range relocations {
			bc.Logger.Info("dry run, not copying", "src", r.Source, "dest", r.Dest())
		}
		return nil
	}

	for _, r := range relocations {
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := os.Stat(r.Source)
		if err != nil {
			return &ArtifactNotFoundError{Artifact: filepath.Base(r.Source), Path: r.Source, Err: err}
		}
		if !info.Mode().IsRegular() {
			return &ArtifactNotFoundError{
				Artifact: filepath.Base(r.Source),
				Path:     r.Source,
				Err:      errors.New("not a regular file"),
			}
		}

		if err := os.MkdirAll(r.DestDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", r.DestDir, err)
		}

		if err := copyArtifact(r.Dest(), r.Source); err != nil {
			return fmt.Errorf("copying %s to %s: %w", r.Source, r.DestDir, err)
		}

		bc.Logger.Info("relocated artifact", "src", r.Source, "dest", r.Dest())
		result.Relocated = append(result.Relocated, r)
	}

	return nil
}
