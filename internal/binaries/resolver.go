// Package binaries locates the PostgreSQL client executables that koggi
// shells out to, and can download them into the user cache when they are
// missing.
//
// Resolution checks four sources in strict priority order:
//  1. per-tool environment override (KOGGI_PG_DUMP etc.)
//  2. the _bin directory embedded next to the koggi executable
//  3. the per-user cache directory
//  4. the system PATH
package binaries

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/koggi-dev/koggi/internal/platform"
)

// Tool names resolved by koggi.
const (
	PgDump    = "pg_dump"
	Psql      = "psql"
	PgRestore = "pg_restore"
)

// RequiredTools lists every client binary koggi needs for backup and
// restore operations.
var RequiredTools = []string{PgDump, Psql, PgRestore}

// envOverrides maps tool names to the environment variables that may
// point at an explicit binary path.
var envOverrides = map[string]string{
	PgDump:    "KOGGI_PG_DUMP",
	Psql:      "KOGGI_PSQL",
	PgRestore: "KOGGI_PG_RESTORE",
}

// NotFoundError reports that every resolution source was exhausted for a
// tool. Hint is user-facing remediation text naming the locations where
// the binary may be provided.
type NotFoundError struct {
	Tool string
	Hint string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %q binary found. %s", e.Tool, e.Hint)
}

// lookup is a single source in the resolution chain. It returns the
// resolved path, or the empty string when this source does not provide
// the tool.
type lookup func(tool string) string

// Resolver locates PostgreSQL client executables for the host platform.
type Resolver struct {
	plat  platform.Info
	chain []lookup

	// installRoot overrides the directory the running executable lives
	// in. Tests set it; production leaves it empty.
	installRoot string
}

// NewResolver returns a resolver for the detected host platform.
func NewResolver() *Resolver {
	return newResolver(platform.Detect())
}

func newResolver(plat platform.Info) *Resolver {
	r := &Resolver{plat: plat}
	r.chain = []lookup{r.fromEnv, r.fromEmbedded, r.fromCache, r.fromPath}
	return r
}

// Resolve returns an absolute path to the named tool, consulting each
// source in priority order. The first source that provides the file
// wins; sources are never merged. The selected binary gets its
// executable bit set best-effort before being returned.
func (r *Resolver) Resolve(tool string) (string, error) {
	for _, try := range r.chain {
		if p := try(tool); p != "" {
			r.ensureExecutable(p)
			return p, nil
		}
	}
	return "", &NotFoundError{Tool: tool, Hint: r.hint(tool)}
}

// EnvVar returns the override environment variable for a tool.
// Unknown tools get a derived KOGGI_<TOOL> name.
func EnvVar(tool string) string {
	if v, ok := envOverrides[tool]; ok {
		return v
	}
	return "KOGGI_" + strings.ToUpper(tool)
}

func (r *Resolver) exeName(tool string) string {
	return tool + r.plat.ExeSuffix()
}

// fromEnv honors the per-tool override variable. The value is returned
// verbatim when it names an existing path.
func (r *Resolver) fromEnv(tool string) string {
	val := os.Getenv(EnvVar(tool))
	if val == "" {
		return ""
	}
	if _, err := os.Stat(val); err != nil {
		return ""
	}
	return val
}

// fromEmbedded checks the _bin directory shipped alongside the koggi
// executable: <installRoot>/_bin/<tag>/<tool>.
func (r *Resolver) fromEmbedded(tool string) string {
	dir := r.embeddedDir()
	if dir == "" {
		return ""
	}
	p := filepath.Join(dir, r.exeName(tool))
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// fromCache checks the per-user cache directory populated by the
// downloader.
func (r *Resolver) fromCache(tool string) string {
	p := filepath.Join(CacheDir(r.plat), r.exeName(tool))
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// fromPath falls back to the standard executable search.
func (r *Resolver) fromPath(tool string) string {
	p, err := exec.LookPath(tool)
	if err != nil {
		return ""
	}
	return p
}

func (r *Resolver) embeddedDir() string {
	root := r.installRoot
	if root == "" {
		exe, err := os.Executable()
		if err != nil {
			return ""
		}
		root = filepath.Dir(exe)
	}
	return filepath.Join(root, "_bin", r.plat.Tag())
}

// ensureExecutable sets the executable bits on the resolved binary.
// Failures are ignored: resolution must not break on a read-only
// filesystem, and the bit is meaningless on windows.
func (r *Resolver) ensureExecutable(path string) {
	if r.plat.OS == "windows" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	_ = os.Chmod(path, info.Mode()|0o111)
}

// hint builds the remediation text surfaced to the operator when a tool
// cannot be found anywhere.
func (r *Resolver) hint(tool string) string {
	return fmt.Sprintf(
		"Provide embedded binaries in %q, place them in %q, set the %s environment variable, or run 'koggi binaries download'.",
		r.embeddedDir(), CacheDir(r.plat), EnvVar(tool))
}

// CacheDir returns the per-user directory for downloaded binaries:
// <cacheRoot>/koggi/bin/<tag>. The cache root is $KOGGI_CACHE_DIR when
// set, otherwise the OS-conventional cache location.
func CacheDir(plat platform.Info) string {
	root := os.Getenv("KOGGI_CACHE_DIR")
	if root == "" {
		root = defaultCacheRoot(plat)
	}
	return filepath.Join(root, "koggi", "bin", plat.Tag())
}

func defaultCacheRoot(plat platform.Info) string {
	if plat.OS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Local")
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache")
}
