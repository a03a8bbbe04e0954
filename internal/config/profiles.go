// Package config loads named database connection profiles from the
// process environment and an optional .env file in the working
// directory.
//
// A profile named DEV1 is declared with variables of the form
// KOGGI_DEV1_DB_NAME, KOGGI_DEV1_DB_HOST and so on. DB_NAME is the only
// required field; the rest fall back to libpq-style defaults. The
// DEFAULT profile is the implied target when no profile flag is given.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Profile is a named set of database connection parameters.
type Profile struct {
	Name      string
	DBName    string
	Host      string
	Port      int
	User      string
	Password  string
	SSLMode   string
	BackupDir string
}

const envPrefix = "KOGGI_"

// fieldSuffixes are the recognized per-profile variable suffixes.
var fieldSuffixes = []string{
	"DB_NAME",
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_PASSWORD",
	"SSL_MODE",
	"BACKUP_DIR",
}

// reserved are KOGGI_ variables consumed elsewhere that must not be
// mistaken for profile declarations.
var reserved = map[string]bool{
	"KOGGI_CACHE_DIR":  true,
	"KOGGI_PG_DUMP":    true,
	"KOGGI_PSQL":       true,
	"KOGGI_PG_RESTORE": true,
}

// LoadProfiles reads a .env file from the working directory when one
// exists (without overriding real environment variables) and collects
// every declared profile. Profiles missing DB_NAME are dropped.
func LoadProfiles() (map[string]Profile, error) {
	// godotenv.Load never clobbers variables already set in the
	// process environment; a missing .env file is not an error.
	_ = godotenv.Load()

	partial := make(map[string]map[string]string)
	for _, kv := range os.Environ() {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) || reserved[key] || val == "" {
			continue
		}
		for _, suffix := range fieldSuffixes {
			trimmed, found := strings.CutSuffix(key, "_"+suffix)
			if !found || len(trimmed) <= len(envPrefix) {
				continue
			}
			name := trimmed[len(envPrefix):]
			if partial[name] == nil {
				partial[name] = make(map[string]string)
			}
			partial[name][suffix] = val
			break
		}
	}

	profiles := make(map[string]Profile)
	for name, fields := range partial {
		p, err := buildProfile(name, fields)
		if err != nil {
			return nil, err
		}
		if p.DBName == "" {
			continue
		}
		profiles[name] = p
	}
	return profiles, nil
}

// Get returns the named profile or an error that tells the operator how
// to see what is available.
func Get(profiles map[string]Profile, name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found (run 'koggi profiles' to list detected profiles)", name)
	}
	return p, nil
}

// Names returns the profile names sorted, with DEFAULT first when
// present.
func Names(profiles map[string]Profile) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == "DEFAULT" {
			return true
		}
		if names[j] == "DEFAULT" {
			return false
		}
		return names[i] < names[j]
	})
	return names
}

func buildProfile(name string, fields map[string]string) (Profile, error) {
	p := Profile{
		Name:      name,
		DBName:    fields["DB_NAME"],
		Host:      fields["DB_HOST"],
		User:      fields["DB_USER"],
		Password:  fields["DB_PASSWORD"],
		SSLMode:   fields["SSL_MODE"],
		BackupDir: fields["BACKUP_DIR"],
	}

	if p.Host == "" {
		p.Host = "localhost"
	}
	if p.User == "" {
		p.User = "postgres"
	}
	if p.SSLMode == "" {
		p.SSLMode = "prefer"
	}
	if p.BackupDir == "" {
		p.BackupDir = filepath.Join("backups", strings.ToLower(name))
	}

	p.Port = 5432
	if raw := fields["DB_PORT"]; raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Profile{}, fmt.Errorf("profile %s: invalid port %q", name, raw)
		}
		p.Port = port
	}

	return p, nil
}
