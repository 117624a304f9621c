package extract

import (
	"archive/tar"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"

	"github.com/flatkit/flatpak-extract/internal/bundle"
	"github.com/flatkit/flatpak-extract/internal/paths"
)

// Unpacks a modern tar-based bundle into the output directory.
//
// The payload is decompressed according to the detected kind and unpacked
// entry by entry. Entry names are resolved with SecureJoin so a crafted
// archive cannot escape the output directory.
func unpackTar(kind bundle.Kind, path, outdir string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnpack, err)
	}
	defer f.Close()

	payload, closer, err := decompress(kind, f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnpack, err)
	}
	if closer != nil {
		defer closer()
	}

	if err := os.MkdirAll(outdir, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrUnpack, err)
	}

	tr := tar.NewReader(payload)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: reading archive: %v", ErrUnpack, err)
		}

		if err := unpackEntry(tr, hdr, outdir); err != nil {
			return fmt.Errorf("%w: entry %s: %v", ErrUnpack, hdr.Name, err)
		}
	}
}

// Wraps the raw payload reader with the decompressor for the kind.
//
// The returned closer releases decompressor state and is nil when the
// payload needs none.
func decompress(kind bundle.Kind, r io.Reader) (io.Reader, func(), error) {
	switch kind {
	case bundle.KindTarGzip:
		zr, err := pgzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	case bundle.KindTarZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case bundle.KindTarXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xr, nil, nil
	case bundle.KindTarBzip2:
		return bzip2.NewReader(r), nil, nil
	}
	return r, nil, nil
}

// Materializes a single archive entry under the output directory.
//
// Regular files, directories, symlinks, and hardlinks are supported. Other
// entry types (devices, FIFOs) have no place in an application bundle and
// are skipped.
func unpackEntry(tr *tar.Reader, hdr *tar.Header, outdir string) error {
	dest, err := securejoin.SecureJoin(outdir, hdr.Name)
	if err != nil {
		return err
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(dest, hdr.FileInfo().Mode().Perm())

	case tar.TypeReg:
		return writeFile(tr, hdr, dest)

	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
			return err
		}
		return os.Symlink(hdr.Linkname, dest)

	case tar.TypeLink:
		target, err := securejoin.SecureJoin(outdir, hdr.Linkname)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
			return err
		}
		return os.Link(target, dest)
	}

	logrus.Debugf("skipping unsupported entry type %d: %s", hdr.Typeflag, hdr.Name)
	return nil
}

// Writes a regular file entry, creating parent directories as needed.
func writeFile(tr *tar.Reader, hdr *tar.Header, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, tr); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
