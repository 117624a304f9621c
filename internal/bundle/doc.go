// Package bundle classifies .flatpak bundle files by payload format.
//
// Two generations of bundles exist in the wild: old-style bundles carrying
// an OSTree static delta, and modern bundles that are plain (optionally
// compressed) tar archives. Detection reads a small prefix of the file and
// matches compression magic and the OSTree marker, falling back to the file
// extension when the prefix is inconclusive.
package bundle
