package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/flatkit/flatpak-extract/internal/bundle"
	"github.com/flatkit/flatpak-extract/internal/ostree"
)

// Controls a single extraction.
type Options struct {
	Bundle string // Path to the input .flatpak file.
	OutDir string // Destination directory; must not exist.
}

// Returned after successful extraction.
type Result struct {
	OutDir string      // Directory containing the extracted tree.
	Kind   bundle.Kind // Detected bundle format.
	Commit string      // Checksum of the extracted commit; empty for tar bundles.
	Files  int         // Number of filesystem entries in the output tree.
	Size   int64       // Total size of regular files in the output tree.
}

// Extracts a bundle into the output directory.
//
// The sequence is strictly linear: validate inputs, detect the bundle
// format, then either import-and-checkout through the scratch repository
// (old-style bundles) or unpack the tar payload directly (modern bundles).
// The scratch repository directory is removed on success and on every
// handled error; only a hard interrupt can leave it behind. Nothing is
// retried, a failure at any stage aborts.
func Run(ctx context.Context, repo *ostree.Repo, opts Options) (*Result, error) {
	if err := validate(opts, repo.Path()); err != nil {
		return nil, err
	}

	kind, err := bundle.Detect(opts.Bundle)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	logrus.Infof("extracting %s bundle %s", kind, opts.Bundle)

	result := &Result{OutDir: opts.OutDir, Kind: kind}

	if kind.IsTar() {
		if err := unpackTar(kind, opts.Bundle, opts.OutDir); err != nil {
			return nil, err
		}
	} else {
		commit, err := checkoutBundle(ctx, repo, opts)
		if err != nil {
			return nil, err
		}
		result.Commit = commit
	}

	result.Files, result.Size = logListing(opts.OutDir)

	logrus.Infof("extracted %d entries to %s", result.Files, opts.OutDir)
	return result, nil
}

// Rejects unusable inputs before any side effect is attempted.
func validate(opts Options, tmpdir string) error {
	info, err := os.Stat(opts.Bundle)
	if err != nil {
		return fmt.Errorf("%w: input file not found: %s", ErrInvalidInput, opts.Bundle)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: not a regular file: %s", ErrInvalidInput, opts.Bundle)
	}

	if _, err := os.Stat(opts.OutDir); err == nil {
		return fmt.Errorf("%w: output directory already exists: %s", ErrInvalidInput, opts.OutDir)
	}
	if _, err := os.Stat(tmpdir); err == nil {
		return fmt.Errorf("%w: temporary directory already exists: %s", ErrInvalidInput, tmpdir)
	}

	return nil
}

// Imports an old-style bundle into the scratch repository and checks out
// its commit.
//
// The repository directory is removed before returning, on success and on
// failure alike. A removal failure after an otherwise successful checkout
// fails the extraction; after a failed one it is only logged, keeping the
// original error as the reported cause.
func checkoutBundle(ctx context.Context, repo *ostree.Repo, opts Options) (commit string, err error) {
	defer func() {
		if rmErr := os.RemoveAll(repo.Path()); rmErr != nil {
			cleanupErr := fmt.Errorf("%w: removing %s: %v", ErrCleanup, repo.Path(), rmErr)
			if err == nil {
				err = cleanupErr
			} else {
				logrus.Warnf("%v, remove it manually", cleanupErr)
			}
		}
	}()

	if err := repo.Init(ctx); err != nil {
		return "", err
	}

	if err := repo.ApplyOffline(ctx, opts.Bundle); err != nil {
		return "", err
	}

	commit, err = repo.ResolveCommit()
	if err != nil {
		return "", err
	}

	if err := repo.Checkout(ctx, commit, opts.OutDir); err != nil {
		return "", err
	}

	return commit, nil
}
