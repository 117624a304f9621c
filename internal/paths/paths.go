package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/google/uuid"

	"github.com/flatkit/flatpak-extract/internal"
)

const (

	// Suffix appended to the input stem for the default output directory.
	outputSuffix = "-flatpak"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the base directory for scratch repositories.
//
//	Linux:   $XDG_RUNTIME_DIR or the system temp dir
//	macOS:   the system temp dir
func ScratchBase() string {
	if xdg.RuntimeDir != "" {
		return xdg.RuntimeDir
	}
	return os.TempDir()
}

// Returns a fresh, unique path for a scratch OSTree repository.
//
// The path is not created; each call returns a different location under
// [ScratchBase]. Uniqueness keeps concurrent invocations from sharing a
// repository.
func ScratchDir() string {
	return filepath.Join(ScratchBase(), internal.Name+"-"+uuid.NewString())
}

// Default output directory for the given bundle path.
//
// The directory is named after the bundle with its extension removed and
// "-flatpak" appended, placed in the current working directory (e.g.
// "org.example.App.flatpak" extracts to "org.example.App-flatpak").
func OutputDir(bundle string) string {
	stem := strings.TrimSuffix(filepath.Base(bundle), filepath.Ext(bundle))
	return stem + outputSuffix
}
