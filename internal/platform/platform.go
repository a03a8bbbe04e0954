// Package platform identifies the host operating system and CPU
// architecture and derives the directory tag used to locate
// platform-specific PostgreSQL client binaries.
package platform

import (
	"runtime"
	"strings"
)

// Info describes the host platform. It is derived once per process and
// never mutated afterwards.
type Info struct {
	OS   string
	Arch string
}

// Detect returns the normalized host platform.
func Detect() Info {
	return Info{
		OS:   NormalizeOS(runtime.GOOS),
		Arch: NormalizeArch(runtime.GOARCH),
	}
}

// Tag returns the "{os}-{arch}" string used as the directory naming
// convention for platform-specific binaries, e.g. "linux-x86_64".
func (i Info) Tag() string {
	return i.OS + "-" + i.Arch
}

// ExeSuffix returns ".exe" on windows and the empty string elsewhere.
func (i Info) ExeSuffix() string {
	if i.OS == "windows" {
		return ".exe"
	}
	return ""
}

// NormalizeArch canonicalizes architecture aliases. Unknown values pass
// through lowercased, so the function is total and idempotent.
func NormalizeArch(raw string) string {
	switch r := strings.ToLower(raw); r {
	case "x86_64", "amd64", "x64":
		return "x86_64"
	case "aarch64", "arm64":
		return "arm64"
	case "armv7l", "armv7":
		return "armv7"
	default:
		return r
	}
}

// NormalizeOS maps host OS identifiers onto the canonical names used in
// platform tags. Identifiers outside the supported set pass through
// unchanged.
func NormalizeOS(raw string) string {
	switch {
	case strings.HasPrefix(raw, "win"):
		return "windows"
	case strings.HasPrefix(raw, "darwin"):
		return "darwin"
	case strings.HasPrefix(raw, "linux"):
		return "linux"
	default:
		return raw
	}
}
