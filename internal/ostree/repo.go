package ostree

import (
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"strings"

	goexec "github.com/jmgilman/go/exec"
	"github.com/sirupsen/logrus"
)

// Binary driven for all repository operations.
const ostreeBinary = "ostree"

// Repository mode for scratch repositories. bare-user stores file metadata
// in xattrs instead of real ownership, so import and checkout work without
// root privileges.
const repoMode = "bare-user"

// A scratch OSTree repository on disk.
//
// All operations shell out to the ostree binary, which is treated as an
// opaque collaborator. The repository directory is created by [Repo.Init]
// and owned by the caller; nothing here removes it.
type Repo struct {
	path   string          // Repository root directory.
	ostree goexec.Executor // Executor invoking the ostree binary.
}

// Creates a repository handle rooted at the given directory.
//
// The directory is not touched until [Repo.Init] is called. The ostree
// binary is resolved from PATH at invocation time.
func New(path string) *Repo {
	executor := goexec.New(goexec.WithInheritEnv(), goexec.WithDisableColors())
	return NewWithExecutor(path, goexec.NewWrapper(executor, ostreeBinary))
}

// Creates a repository handle with a caller-supplied executor.
//
// The executor receives the ostree subcommand and arguments without the
// leading binary name, which makes the repository testable with a fake.
func NewWithExecutor(path string, executor goexec.Executor) *Repo {
	return &Repo{path: path, ostree: executor}
}

// Path to the repository root directory.
func (r *Repo) Path() string {
	return r.path
}

// Initializes the repository in bare-user mode.
//
// The repository directory and its object store layout are created by the
// ostree binary.
func (r *Repo) Init(ctx context.Context) error {
	if err := r.run(ctx, "init", "--repo="+r.path, "--mode="+repoMode); err != nil {
		return err
	}

	logrus.Debugf("scratch repository initialized at %s", r.path)
	return nil
}

// Applies a bundle's static delta to the repository.
//
// Old-style flatpak bundles are OSTree static deltas; applying one offline
// imports the bundled commit and all of its objects into the repository.
func (r *Repo) ApplyOffline(ctx context.Context, bundle string) error {
	if err := r.run(ctx, "static-delta", "apply-offline", "--repo="+r.path, bundle); err != nil {
		return err
	}

	logrus.Debugf("bundle %s applied to %s", bundle, r.path)
	return nil
}

// Checks out a commit's file tree into the destination directory.
//
// The -U flag checks out in user mode, discarding ownership metadata that
// would otherwise require root to apply. The destination must not exist;
// ostree creates it.
func (r *Repo) Checkout(ctx context.Context, checksum, dest string) error {
	if err := r.run(ctx, "checkout", "--repo="+r.path, "-U", checksum, dest); err != nil {
		return err
	}

	logrus.Debugf("commit %s checked out to %s", checksum, dest)
	return nil
}

// Runs one ostree subcommand and classifies failures.
//
// A missing binary is reported as [ErrNotInstalled] with an install hint.
// Every other failure is wrapped as [ErrOSTree] with the subcommand and
// captured stderr, which carries ostree's own diagnosis of the problem.
func (r *Repo) run(ctx context.Context, args ...string) error {
	logrus.Debugf("running: %s %s", ostreeBinary, strings.Join(args, " "))

	_, err := r.ostree.WithContext(ctx).Run(args...)
	if err == nil {
		return nil
	}

	if errors.Is(err, osexec.ErrNotFound) {
		return fmt.Errorf("%w: install ostree and ensure it is in PATH", ErrNotInstalled)
	}

	var execErr *goexec.ExecError
	if errors.As(err, &execErr) && strings.TrimSpace(execErr.Stderr) != "" {
		return fmt.Errorf("%w: ostree %s: %s", ErrOSTree, args[0], strings.TrimSpace(execErr.Stderr))
	}
	return fmt.Errorf("%w: ostree %s: %v", ErrOSTree, args[0], err)
}
