package extract

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"

	"github.com/flatkit/flatpak-extract/internal/bundle"
	"github.com/flatkit/flatpak-extract/internal/ostree"
)

func mustDetect(t *testing.T, path string) bundle.Kind {
	t.Helper()
	kind, err := bundle.Detect(path)
	if err != nil {
		t.Fatalf("detecting %s: %v", path, err)
	}
	return kind
}

type tarEntry struct {
	header *tar.Header
	body   []byte
}

func buildTar(t *testing.T, w io.Writer, entries []tarEntry) {
	t.Helper()
	tw := tar.NewWriter(w)
	for _, e := range entries {
		if e.header.Size == 0 && len(e.body) > 0 {
			e.header.Size = int64(len(e.body))
		}
		if err := tw.WriteHeader(e.header); err != nil {
			t.Fatalf("writing header %s: %v", e.header.Name, err)
		}
		if len(e.body) > 0 {
			if _, err := tw.Write(e.body); err != nil {
				t.Fatalf("writing body %s: %v", e.header.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
}

var bundleEntries = []tarEntry{
	{header: &tar.Header{Name: "files", Typeflag: tar.TypeDir, Mode: 0755}},
	{header: &tar.Header{Name: "files/bin", Typeflag: tar.TypeDir, Mode: 0755}},
	{
		header: &tar.Header{Name: "files/bin/app", Typeflag: tar.TypeReg, Mode: 0755},
		body:   []byte("#!/bin/sh\nexec true\n"),
	},
	{
		header: &tar.Header{Name: "metadata", Typeflag: tar.TypeReg, Mode: 0644},
		body:   []byte("[Application]\nname=org.example.App\n"),
	},
	{
		header: &tar.Header{
			Name:     "files/bin/app-link",
			Typeflag: tar.TypeSymlink,
			Linkname: "app",
		},
	},
}

func assertBundleTree(t *testing.T, outdir string) {
	t.Helper()

	body, err := os.ReadFile(filepath.Join(outdir, "metadata"))
	if err != nil {
		t.Fatalf("reading metadata: %v", err)
	}
	if string(body) != "[Application]\nname=org.example.App\n" {
		t.Fatalf("metadata content = %q", body)
	}

	info, err := os.Stat(filepath.Join(outdir, "files", "bin", "app"))
	if err != nil {
		t.Fatalf("stat app: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		t.Fatalf("app mode = %v, want 0755", info.Mode().Perm())
	}

	target, err := os.Readlink(filepath.Join(outdir, "files", "bin", "app-link"))
	if err != nil {
		t.Fatalf("readlink: %v", err)
	}
	if target != "app" {
		t.Fatalf("symlink target = %q, want %q", target, "app")
	}
}

func TestRunGzipBundle(t *testing.T) {
	base := t.TempDir()
	bundlePath := filepath.Join(base, "app.flatpak")

	f, err := os.Create(bundlePath)
	if err != nil {
		t.Fatalf("creating bundle: %v", err)
	}
	zw := pgzip.NewWriter(f)
	buildTar(t, zw, bundleEntries)
	if err := zw.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing bundle: %v", err)
	}

	outdir := filepath.Join(base, "out")
	repo := ostree.NewWithExecutor(filepath.Join(base, "scratch"), &fakeOSTree{t: t})

	result, err := Run(context.Background(), repo, Options{Bundle: bundlePath, OutDir: outdir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Commit != "" {
		t.Fatalf("commit = %q, want empty for tar bundle", result.Commit)
	}
	assertBundleTree(t, outdir)
}

func TestRunTwiceIndependentTrees(t *testing.T) {
	base := t.TempDir()
	bundlePath := filepath.Join(base, "app.flatpak")

	f, err := os.Create(bundlePath)
	if err != nil {
		t.Fatalf("creating bundle: %v", err)
	}
	zw := pgzip.NewWriter(f)
	buildTar(t, zw, bundleEntries)
	zw.Close()
	f.Close()

	for _, out := range []string{"out-a", "out-b"} {
		outdir := filepath.Join(base, out)
		repo := ostree.NewWithExecutor(filepath.Join(base, "scratch-"+out), &fakeOSTree{t: t})
		if _, err := Run(context.Background(), repo, Options{Bundle: bundlePath, OutDir: outdir}); err != nil {
			t.Fatalf("extracting to %s: %v", outdir, err)
		}
		assertBundleTree(t, outdir)
	}
}

func TestUnpackTarZstd(t *testing.T) {
	base := t.TempDir()
	bundlePath := filepath.Join(base, "app.flatpak")

	f, err := os.Create(bundlePath)
	if err != nil {
		t.Fatalf("creating bundle: %v", err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatalf("creating zstd writer: %v", err)
	}
	buildTar(t, zw, bundleEntries)
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zstd: %v", err)
	}
	f.Close()

	outdir := filepath.Join(base, "out")
	repo := ostree.NewWithExecutor(filepath.Join(base, "scratch"), &fakeOSTree{t: t})

	result, err := Run(context.Background(), repo, Options{Bundle: bundlePath, OutDir: outdir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Kind.IsTar() {
		t.Fatalf("kind = %v, want tar kind", result.Kind)
	}
	assertBundleTree(t, outdir)
}

func TestUnpackTarXz(t *testing.T) {
	base := t.TempDir()
	bundlePath := filepath.Join(base, "app.flatpak")

	f, err := os.Create(bundlePath)
	if err != nil {
		t.Fatalf("creating bundle: %v", err)
	}
	xw, err := xz.NewWriter(f)
	if err != nil {
		t.Fatalf("creating xz writer: %v", err)
	}
	buildTar(t, xw, bundleEntries)
	if err := xw.Close(); err != nil {
		t.Fatalf("closing xz: %v", err)
	}
	f.Close()

	outdir := filepath.Join(base, "out")
	repo := ostree.NewWithExecutor(filepath.Join(base, "scratch"), &fakeOSTree{t: t})

	result, err := Run(context.Background(), repo, Options{Bundle: bundlePath, OutDir: outdir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != bundle.KindTarXz {
		t.Fatalf("kind = %v, want %v", result.Kind, bundle.KindTarXz)
	}
	assertBundleTree(t, outdir)
}

func TestRunBzip2Bundle(t *testing.T) {
	// The standard library only decompresses bzip2, so the bundle is a
	// checked-in fixture instead of being built in-process.
	fixture, err := os.ReadFile(filepath.Join("testdata", "bundle.tar.bz2"))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	base := t.TempDir()
	bundlePath := filepath.Join(base, "app.flatpak")
	if err := os.WriteFile(bundlePath, fixture, 0644); err != nil {
		t.Fatalf("writing bundle: %v", err)
	}

	outdir := filepath.Join(base, "out")
	repo := ostree.NewWithExecutor(filepath.Join(base, "scratch"), &fakeOSTree{t: t})

	result, err := Run(context.Background(), repo, Options{Bundle: bundlePath, OutDir: outdir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != bundle.KindTarBzip2 {
		t.Fatalf("kind = %v, want %v", result.Kind, bundle.KindTarBzip2)
	}
	assertBundleTree(t, outdir)
}

func TestUnpackTarTraversalClamped(t *testing.T) {
	base := t.TempDir()
	bundlePath := filepath.Join(base, "evil.bundle")

	f, err := os.Create(bundlePath)
	if err != nil {
		t.Fatalf("creating bundle: %v", err)
	}
	buildTar(t, f, []tarEntry{
		{
			header: &tar.Header{Name: "../escape.txt", Typeflag: tar.TypeReg, Mode: 0644},
			body:   []byte("outside"),
		},
	})
	f.Close()

	outdir := filepath.Join(base, "nest", "out")

	// Uncompressed, non-.flatpak extension: detected as plain tar.
	if err := unpackTar(mustDetect(t, bundlePath), bundlePath, outdir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(base, "nest", "escape.txt")); !os.IsNotExist(err) {
		t.Fatal("entry escaped the output directory")
	}
	if _, err := os.Stat(filepath.Join(outdir, "escape.txt")); err != nil {
		t.Fatalf("clamped entry missing inside output directory: %v", err)
	}
}

func TestUnpackTarSkipsUnsupportedEntries(t *testing.T) {
	base := t.TempDir()
	bundlePath := filepath.Join(base, "mixed.bundle")

	f, err := os.Create(bundlePath)
	if err != nil {
		t.Fatalf("creating bundle: %v", err)
	}
	buildTar(t, f, []tarEntry{
		{header: &tar.Header{Name: "fifo", Typeflag: tar.TypeFifo, Mode: 0644}},
		{
			header: &tar.Header{Name: "kept.txt", Typeflag: tar.TypeReg, Mode: 0644},
			body:   []byte("kept"),
		},
	})
	f.Close()

	outdir := filepath.Join(base, "out")
	if err := unpackTar(mustDetect(t, bundlePath), bundlePath, outdir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outdir, "fifo")); !os.IsNotExist(err) {
		t.Fatal("unsupported entry was materialized")
	}
	if _, err := os.Stat(filepath.Join(outdir, "kept.txt")); err != nil {
		t.Fatalf("regular entry missing: %v", err)
	}
}
