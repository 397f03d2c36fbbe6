package ripserext

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Working directory primitives, overridden in tests.
var (
	getwd = os.Getwd
	chdir = os.Chdir
)

// workDirMu serializes runs inside one process. The working directory is
// process-wide state.
var workDirMu sync.Mutex

// withWorkDir enters dir, runs fn, and changes back to restoreTo on every
// exit path, including errors and panics from fn. A failed restore is joined
// to the error fn returned.
func withWorkDir(restoreTo, dir string, fn func() error) (err error) {
	workDirMu.Lock()
	defer workDirMu.Unlock()

	if err := chdir(dir); err != nil {
		return fmt.Errorf("entering %s: %w", dir, err)
	}

	defer func() {
		if restoreErr := chdir(restoreTo); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("restoring working directory %s: %w", restoreTo, restoreErr))
		}
	}()

	return fn()
}
