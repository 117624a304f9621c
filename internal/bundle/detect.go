package bundle

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Kind of payload carried by a bundle file.
type Kind int

const (
	// Old-style bundle: an OSTree static delta.
	KindOSTree Kind = iota

	// Modern bundle: a plain tar archive.
	KindTar

	// Tar archive compressed with gzip.
	KindTarGzip

	// Tar archive compressed with xz.
	KindTarXz

	// Tar archive compressed with bzip2.
	KindTarBzip2

	// Tar archive compressed with zstd.
	KindTarZstd
)

// Number of leading bytes sniffed for detection.
const sniffLen = 16

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicXz    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicBzip2 = []byte("BZh")
	magicZstd  = []byte{0x28, 0xb5, 0x2f, 0xfd}

	markerOSTree = []byte("OSTREE")
)

// Returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindOSTree:
		return "ostree"
	case KindTar:
		return "tar"
	case KindTarGzip:
		return "tar+gzip"
	case KindTarXz:
		return "tar+xz"
	case KindTarBzip2:
		return "tar+bzip2"
	case KindTarZstd:
		return "tar+zstd"
	}
	return "unknown"
}

// Whether the kind is a tar archive, compressed or not.
func (k Kind) IsTar() bool {
	return k != KindOSTree
}

// Detects the kind of a bundle file from its leading bytes.
//
// Compression magic identifies modern tar bundles; an OSTREE marker in the
// head identifies old-style static-delta bundles. When neither matches, the
// ".flatpak" extension selects the old-style format and anything else is
// treated as an uncompressed tar archive.
func Detect(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindOSTree, fmt.Errorf("opening bundle: %w", err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return KindOSTree, fmt.Errorf("reading bundle header: %w", err)
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, magicGzip):
		return KindTarGzip, nil
	case bytes.HasPrefix(head, magicXz):
		return KindTarXz, nil
	case bytes.HasPrefix(head, magicBzip2):
		return KindTarBzip2, nil
	case bytes.HasPrefix(head, magicZstd):
		return KindTarZstd, nil
	case bytes.Contains(head, markerOSTree):
		return KindOSTree, nil
	}

	if filepath.Ext(path) == ".flatpak" {
		return KindOSTree, nil
	}
	return KindTar, nil
}
