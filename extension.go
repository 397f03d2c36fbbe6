package ripserext

import (
	"errors"
	"math/bits"
	"runtime"

	"github.com/charmbracelet/log"
)

const (
	// RequiredPointerWidth is the only pointer width the native library supports.
	RequiredPointerWidth = 64

	// PrimaryOS is the operating system the native library is supported on.
	// Other systems are accepted without guarantees.
	PrimaryOS = "linux"

	// DefaultExtensionName is the logical name of the ripser++ extension.
	DefaultExtensionName = "ripserplusplus/ripserplusplus"
)

// Host properties, overridden in tests.
var (
	hostPointerWidth = bits.UintSize
	hostOS           = runtime.GOOS
)

// Extension identifies one native artifact to produce.
//
// Sources is always empty: the CMake configuration enumerates the sources,
// nothing is passed individually.
type Extension struct {
	Name    string
	Sources []string
}

// NewExtension validates the host and returns a descriptor for name.
//
// It fails with *UnsupportedArchitectureError unless the host pointer width
// is 64 bits. A host operating system other than Linux is logged as a
// warning and otherwise accepted.
func NewExtension(name string) (*Extension, error) {
	return validateExtension(name, hostPointerWidth, hostOS)
}

func validateExtension(name string, pointerWidth int, goos string) (*Extension, error) {
	if name == "" {
		return nil, errors.New("extension name is empty")
	}

	if pointerWidth != RequiredPointerWidth {
		return nil, &UnsupportedArchitectureError{PointerWidth: pointerWidth}
	}

	if goos != PrimaryOS {
		log.Warn("native extension is only supported on linux, continuing", "extension", name, "os", goos)
	}

	return &Extension{Name: name, Sources: []string{}}, nil
}
