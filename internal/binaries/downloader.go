package binaries

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/koggi-dev/koggi/internal/output"
	"github.com/koggi-dev/koggi/internal/platform"
)

// archiveInfo describes the downloadable PostgreSQL client bundle for
// one platform tag.
type archiveInfo struct {
	URL     string
	BinPath string // bin directory inside the extracted archive
}

// archives maps platform tags to their download source. Platforms
// missing from this table must rely on PATH, embedded binaries, or the
// env overrides.
var archives = map[string]archiveInfo{
	"windows-x86_64": {
		URL:     "https://get.enterprisedb.com/postgresql/postgresql-15.4-1-windows-x64-binaries.zip",
		BinPath: "pgsql/bin",
	},
	"linux-x86_64": {
		URL:     "https://ftp.postgresql.org/pub/binary/v15.4/linux/postgresql-15.4-linux-x64-binaries.tar.gz",
		BinPath: "usr/local/pgsql/bin",
	},
	"darwin-x86_64": {
		URL:     "https://ftp.postgresql.org/pub/binary/v15.4/macos/postgresql-15.4-osx-binaries.zip",
		BinPath: "usr/local/pgsql/bin",
	},
	"darwin-arm64": {
		URL:     "https://ftp.postgresql.org/pub/binary/v15.4/macos/postgresql-15.4-osx-arm64-binaries.zip",
		BinPath: "usr/local/pgsql/bin",
	},
}

// Downloader fetches the PostgreSQL client bundle for the host platform
// and installs the required tools into the user cache directory.
type Downloader struct {
	plat platform.Info
	out  io.Writer
}

// NewDownloader returns a downloader for the detected host platform
// that reports progress to w.
func NewDownloader(w io.Writer) *Downloader {
	return &Downloader{plat: platform.Detect(), out: w}
}

// ToolStatus reports the cache state of one required tool.
type ToolStatus struct {
	Tool      string
	Installed bool
	Path      string
}

// Status reports which required tools are present in the cache
// directory.
func (d *Downloader) Status() []ToolStatus {
	cache := CacheDir(d.plat)
	statuses := make([]ToolStatus, 0, len(RequiredTools))
	for _, tool := range RequiredTools {
		p := filepath.Join(cache, tool+d.plat.ExeSuffix())
		info, err := os.Stat(p)
		installed := err == nil && info.Mode().IsRegular()
		if !installed {
			p = ""
		}
		statuses = append(statuses, ToolStatus{Tool: tool, Installed: installed, Path: p})
	}
	return statuses
}

// Download fetches and installs the client tools for the host platform.
// When force is false and every tool is already cached, the download is
// skipped.
func (d *Downloader) Download(force bool) error {
	info, ok := archives[d.plat.Tag()]
	if !ok {
		return fmt.Errorf("no PostgreSQL binaries available for platform %s", d.plat.Tag())
	}

	if !force {
		missing := d.missingTools()
		if len(missing) == 0 {
			fmt.Fprintln(d.out, "PostgreSQL binaries already installed")
			return nil
		}
		fmt.Fprintf(d.out, "Missing tools: %s\n", strings.Join(missing, ", "))
	}

	cache := CacheDir(d.plat)
	if err := os.MkdirAll(cache, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	archivePath := filepath.Join(cache, filepath.Base(info.URL))
	if err := d.fetch(info.URL, archivePath); err != nil {
		return err
	}
	defer os.Remove(archivePath)

	installed, err := d.extract(archivePath, info.BinPath, cache)
	if err != nil {
		return err
	}
	if len(installed) == 0 {
		return fmt.Errorf("no required tools found in downloaded archive")
	}

	fmt.Fprintf(d.out, "Installed %d tools into %s\n", len(installed), cache)
	return nil
}

// Clean removes every downloaded tool from the cache directory.
func (d *Downloader) Clean() error {
	cache := CacheDir(d.plat)
	removed := 0
	for _, tool := range RequiredTools {
		p := filepath.Join(cache, tool+d.plat.ExeSuffix())
		if err := os.Remove(p); err == nil {
			removed++
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	if removed == 0 {
		fmt.Fprintln(d.out, "No downloaded binaries to remove")
		return nil
	}
	fmt.Fprintf(d.out, "Removed %d binaries from %s\n", removed, cache)
	// Drop the cache directory too when it is now empty.
	_ = os.Remove(cache)
	return nil
}

func (d *Downloader) missingTools() []string {
	var missing []string
	for _, st := range d.Status() {
		if !st.Installed {
			missing = append(missing, st.Tool)
		}
	}
	return missing
}

// fetch downloads url to dest, rendering a progress bar fed from the
// response content length.
func (d *Downloader) fetch(url, dest string) error {
	fmt.Fprintf(d.out, "Downloading %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: unexpected status %s", resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer f.Close()

	bar := output.NewProgress(resp.ContentLength, "Downloading")
	bar.SetWriter(d.out)
	if _, err := io.Copy(io.MultiWriter(f, bar), resp.Body); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	bar.Finish()
	return nil
}

// extract unpacks the archive into a scratch directory, then copies the
// required tools from its bin directory into destDir with the
// executable bit set. It returns the names of the tools it installed.
func (d *Downloader) extract(archivePath, binPath, destDir string) ([]string, error) {
	scratch, err := os.MkdirTemp(destDir, "extract-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	switch {
	case strings.HasSuffix(archivePath, ".zip"):
		err = extractZip(archivePath, scratch)
	case strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"):
		err = extractTarGz(archivePath, scratch)
	default:
		err = fmt.Errorf("unsupported archive format: %s", filepath.Ext(archivePath))
	}
	if err != nil {
		return nil, err
	}

	binDir := filepath.Join(scratch, filepath.FromSlash(binPath))
	if _, err := os.Stat(binDir); err != nil {
		binDir = findBinDir(scratch)
	}
	if binDir == "" {
		return nil, fmt.Errorf("could not find bin directory in extracted archive")
	}

	var installed []string
	for _, tool := range RequiredTools {
		exe := tool + d.plat.ExeSuffix()
		src := filepath.Join(binDir, exe)
		if _, err := os.Stat(src); err != nil {
			fmt.Fprintf(d.out, "  %s not found in archive\n", tool)
			continue
		}
		if err := copyFile(src, filepath.Join(destDir, exe), 0755); err != nil {
			return installed, fmt.Errorf("failed to install %s: %w", tool, err)
		}
		installed = append(installed, tool)
	}
	return installed, nil
}

// findBinDir locates a directory named "bin" anywhere under root.
func findBinDir(root string) string {
	var found string
	filepath.WalkDir(root, func(path string, de os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if de.IsDir() && de.Name() == "bin" && found == "" {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

// extractZip unpacks a zip archive into dest, refusing entries that
// would escape it.
func extractZip(archivePath, dest string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, rc, f.Mode())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extractTarGz unpacks a gzip-compressed tarball into dest.
func extractTarGz(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}
		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := writeFile(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
		}
	}
}

// safeJoin joins name under dest and rejects path traversal out of it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes extraction directory: %s", name)
	}
	return target, nil
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeFile(dest, in, mode)
}
