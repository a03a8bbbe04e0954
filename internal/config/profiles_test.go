package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearKoggiEnv removes any KOGGI_ variables leaking in from the host
// environment so tests see only what they set.
func clearKoggiEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, envPrefix) {
			t.Setenv(key, "")
		}
	}
}

func TestLoadProfilesFromEnv(t *testing.T) {
	clearKoggiEnv(t)
	t.Setenv("KOGGI_DEV1_DB_NAME", "app_dev")
	t.Setenv("KOGGI_DEV1_DB_HOST", "db.internal")
	t.Setenv("KOGGI_DEV1_DB_PORT", "5433")
	t.Setenv("KOGGI_DEV1_DB_USER", "deploy")
	t.Setenv("KOGGI_DEV1_DB_PASSWORD", "hunter2")
	t.Setenv("KOGGI_DEV1_SSL_MODE", "require")
	t.Setenv("KOGGI_DEV1_BACKUP_DIR", "/var/backups/dev1")

	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}

	p, ok := profiles["DEV1"]
	if !ok {
		t.Fatalf("profile DEV1 not found, got %v", Names(profiles))
	}
	want := Profile{
		Name:      "DEV1",
		DBName:    "app_dev",
		Host:      "db.internal",
		Port:      5433,
		User:      "deploy",
		Password:  "hunter2",
		SSLMode:   "require",
		BackupDir: "/var/backups/dev1",
	}
	if p != want {
		t.Errorf("profile = %+v, want %+v", p, want)
	}
}

func TestLoadProfilesDefaults(t *testing.T) {
	clearKoggiEnv(t)
	t.Setenv("KOGGI_PROD_DB_NAME", "app")

	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}

	p := profiles["PROD"]
	if p.Host != "localhost" || p.Port != 5432 || p.User != "postgres" || p.SSLMode != "prefer" {
		t.Errorf("defaults not applied: %+v", p)
	}
	if p.BackupDir != filepath.Join("backups", "prod") {
		t.Errorf("BackupDir = %q, want backups/prod", p.BackupDir)
	}
}

func TestLoadProfilesRequiresDBName(t *testing.T) {
	clearKoggiEnv(t)
	t.Setenv("KOGGI_STAGING_DB_HOST", "staging.internal")

	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}
	if _, ok := profiles["STAGING"]; ok {
		t.Error("profile without DB_NAME should be dropped")
	}
}

func TestLoadProfilesSkipsReservedVars(t *testing.T) {
	clearKoggiEnv(t)
	t.Setenv("KOGGI_CACHE_DIR", "/tmp/cache")
	t.Setenv("KOGGI_PG_DUMP", "/usr/bin/pg_dump")

	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("reserved vars produced profiles: %v", Names(profiles))
	}
}

func TestLoadProfilesInvalidPort(t *testing.T) {
	clearKoggiEnv(t)
	t.Setenv("KOGGI_DEV_DB_NAME", "app")
	t.Setenv("KOGGI_DEV_DB_PORT", "not-a-port")

	if _, err := LoadProfiles(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestLoadProfilesFromDotEnv(t *testing.T) {
	clearKoggiEnv(t)

	dir := t.TempDir()
	env := "KOGGI_LOCAL_DB_NAME=localdb\nKOGGI_LOCAL_DB_PORT=6543\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	profiles, err := LoadProfiles()
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}
	p, ok := profiles["LOCAL"]
	if !ok {
		t.Fatalf("profile LOCAL not loaded from .env, got %v", Names(profiles))
	}
	if p.DBName != "localdb" || p.Port != 6543 {
		t.Errorf("profile = %+v", p)
	}
}

func TestNamesOrdering(t *testing.T) {
	profiles := map[string]Profile{
		"ZETA":    {},
		"DEFAULT": {},
		"ALPHA":   {},
	}
	got := Names(profiles)
	want := []string{"DEFAULT", "ALPHA", "ZETA"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names = %v, want %v", got, want)
		}
	}
}

func TestGetUnknownProfile(t *testing.T) {
	_, err := Get(map[string]Profile{}, "NOPE")
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
	if !strings.Contains(err.Error(), "NOPE") {
		t.Errorf("error %q does not name the profile", err)
	}
}
