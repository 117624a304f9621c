// Package extract orchestrates bundle extraction.
//
// An extraction is a linear pipeline: validate the input file and the
// output and scratch paths, detect the bundle format, materialize the file
// tree, and clean up. Old-style bundles go through a scratch OSTree
// repository (init, static-delta apply, commit discovery, checkout) driven
// by the ostree package; modern bundles are tar archives unpacked directly
// with the appropriate decompressor. The scratch repository lives only for
// the duration of one extraction.
//
// Example usage:
//
//	result, err := extract.Run(ctx, ostree.New(tmpdir), extract.Options{
//	    Bundle: "org.example.App.flatpak",
//	    OutDir: "org.example.App-flatpak",
//	})
//	if err != nil {
//	    return err
//	}
package extract
