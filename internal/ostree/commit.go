package ostree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"
)

// Extension of commit objects in the repository object store.
const commitExt = ".commit"

// Discovers the checksum of the commit imported into the repository.
//
// OSTree stores objects under objects/<first two hex chars>/<rest>.<type>,
// so the commit checksum is recomposed from the parent directory name and
// the filename stem of a .commit object. A bundle carries exactly one
// commit; when several are present (a reused repository) the first in
// lexical order is used and a warning is logged. The recomposed checksum
// is validated as a sha256 digest before it is handed to ostree checkout.
func (r *Repo) ResolveCommit() (string, error) {
	objects := filepath.Join(r.path, "objects")
	if info, err := os.Stat(objects); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: missing objects directory %s", ErrNoCommit, objects)
	}

	var commits []string
	err := filepath.WalkDir(objects, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), commitExt) {
			commits = append(commits, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: scanning %s: %v", ErrNoCommit, objects, err)
	}

	if len(commits) == 0 {
		return "", fmt.Errorf("%w: no %s object under %s", ErrNoCommit, commitExt, objects)
	}
	if len(commits) > 1 {
		logrus.Warnf("found %d commit objects, using %s", len(commits), commits[0])
	}

	return commitChecksum(commits[0])
}

// Recomposes and validates the commit checksum from an object path.
func commitChecksum(path string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(path), commitExt)
	checksum := filepath.Base(filepath.Dir(path)) + stem

	if err := digest.NewDigestFromEncoded(digest.SHA256, checksum).Validate(); err != nil {
		return "", fmt.Errorf("%w: malformed commit checksum %q", ErrNoCommit, checksum)
	}

	return checksum, nil
}
