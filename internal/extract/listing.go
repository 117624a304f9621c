package extract

import (
	"io/fs"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"

	"github.com/flatkit/flatpak-extract/internal"
)

// Walks the extracted tree and logs its contents.
//
// Every entry is logged, with human-readable sizes for regular files when
// verbose mode is on. Returns the entry count and the total size of regular
// files. Walk errors are logged and skipped; a listing problem must not
// fail an extraction that already succeeded.
func logListing(root string) (int, int64) {
	var files int
	var total int64

	verbose := internal.IsVerbose()

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.Warnf("listing %s: %v", path, err)
			return fs.SkipDir
		}

		files++

		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
				if verbose {
					logrus.Infof("%s (%s)", path, units.HumanSize(float64(info.Size())))
					return nil
				}
			}
		}

		if verbose {
			logrus.Info(path)
		} else {
			logrus.Debug(path)
		}
		return nil
	})

	return files, total
}
