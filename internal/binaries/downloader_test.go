package binaries

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/koggi-dev/koggi/internal/platform"
)

func newTestDownloader(t *testing.T) *Downloader {
	t.Helper()
	t.Setenv("KOGGI_CACHE_DIR", t.TempDir())
	return &Downloader{plat: testPlat, out: io.Discard}
}

func TestStatusEmptyCache(t *testing.T) {
	d := newTestDownloader(t)

	statuses := d.Status()
	if len(statuses) != len(RequiredTools) {
		t.Fatalf("Status returned %d entries, want %d", len(statuses), len(RequiredTools))
	}
	for _, st := range statuses {
		if st.Installed {
			t.Errorf("tool %s reported installed in empty cache", st.Tool)
		}
		if st.Path != "" {
			t.Errorf("tool %s has path %q in empty cache", st.Tool, st.Path)
		}
	}
}

func TestStatusPopulatedCache(t *testing.T) {
	d := newTestDownloader(t)
	cache := CacheDir(testPlat)
	writeTool(t, cache, PgDump)

	for _, st := range d.Status() {
		switch st.Tool {
		case PgDump:
			if !st.Installed {
				t.Error("pg_dump should be reported installed")
			}
			if st.Path != filepath.Join(cache, PgDump) {
				t.Errorf("pg_dump path = %q", st.Path)
			}
		default:
			if st.Installed {
				t.Errorf("tool %s should not be reported installed", st.Tool)
			}
		}
	}
}

func TestDownloadUnsupportedPlatform(t *testing.T) {
	d := &Downloader{plat: platform.Info{OS: "plan9", Arch: "mips"}, out: io.Discard}
	err := d.Download(false)
	if err == nil {
		t.Fatal("expected error for unsupported platform")
	}
}

func TestClean(t *testing.T) {
	d := newTestDownloader(t)
	cache := CacheDir(testPlat)
	writeTool(t, cache, PgDump)
	writeTool(t, cache, Psql)

	if err := d.Clean(); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	for _, tool := range RequiredTools {
		if _, err := os.Stat(filepath.Join(cache, tool)); !os.IsNotExist(err) {
			t.Errorf("tool %s still present after Clean", tool)
		}
	}
	// Clean on an already-empty cache is not an error.
	if err := d.Clean(); err != nil {
		t.Errorf("second Clean failed: %v", err)
	}
}

// buildZip writes a zip archive with the given entry names, each
// containing its own name as content.
func buildZip(t *testing.T, path string, entries []string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func buildTarGz(t *testing.T, path string, entries []string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range entries {
		hdr := &tar.Header{Name: name, Mode: 0755, Size: int64(len(name)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractZipArchive(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture layout assumes unix executable names")
	}

	d := newTestDownloader(t)
	cache := CacheDir(testPlat)
	if err := os.MkdirAll(cache, 0755); err != nil {
		t.Fatal(err)
	}

	archive := filepath.Join(t.TempDir(), "pg.zip")
	buildZip(t, archive, []string{
		"pgsql/bin/pg_dump",
		"pgsql/bin/psql",
		"pgsql/bin/pg_restore",
		"pgsql/share/readme.txt",
	})

	installed, err := d.extract(archive, "pgsql/bin", cache)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(installed) != 3 {
		t.Errorf("installed %d tools, want 3: %v", len(installed), installed)
	}
	for _, tool := range RequiredTools {
		info, err := os.Stat(filepath.Join(cache, tool))
		if err != nil {
			t.Errorf("tool %s missing after extract: %v", tool, err)
			continue
		}
		if info.Mode()&0o111 == 0 {
			t.Errorf("tool %s is not executable: %v", tool, info.Mode())
		}
	}
}

func TestExtractTarGzFindsBinDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture layout assumes unix executable names")
	}

	d := newTestDownloader(t)
	cache := CacheDir(testPlat)
	if err := os.MkdirAll(cache, 0755); err != nil {
		t.Fatal(err)
	}

	archive := filepath.Join(t.TempDir(), "pg.tar.gz")
	// The declared bin path does not match; extraction falls back to
	// searching for a bin directory.
	buildTarGz(t, archive, []string{
		"pg15/bin/pg_dump",
		"pg15/bin/psql",
	})

	installed, err := d.extract(archive, "usr/local/pgsql/bin", cache)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(installed) != 2 {
		t.Errorf("installed %d tools, want 2: %v", len(installed), installed)
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	d := newTestDownloader(t)
	cache := CacheDir(testPlat)
	if err := os.MkdirAll(cache, 0755); err != nil {
		t.Fatal(err)
	}

	archive := filepath.Join(t.TempDir(), "evil.zip")
	buildZip(t, archive, []string{"../../escape"})

	if _, err := d.extract(archive, "bin", cache); err == nil {
		t.Fatal("expected error for path traversal entry")
	}
}
