// Package ostree drives the ostree binary against a scratch repository.
//
// A [Repo] wraps one throwaway repository directory. Bundles are imported
// by applying their static delta offline, the resulting commit checksum is
// discovered by scanning the object store, and the commit's file tree is
// checked out in user mode. The ostree binary itself is the only authority
// on the repository format; this package never parses objects beyond their
// filenames.
//
// Example usage:
//
//	repo := ostree.New(scratchDir)
//	if err := repo.Init(ctx); err != nil {
//	    return err
//	}
//	if err := repo.ApplyOffline(ctx, "app.flatpak"); err != nil {
//	    return err
//	}
//
//	checksum, err := repo.ResolveCommit()
//	if err != nil {
//	    return err
//	}
//
//	if err := repo.Checkout(ctx, checksum, outdir); err != nil {
//	    return err
//	}
package ostree
