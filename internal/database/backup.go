// Package database runs backup and restore operations by shelling out
// to the resolved PostgreSQL client binaries, and tests connectivity
// through the pgx driver.
package database

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/koggi-dev/koggi/internal/binaries"
	"github.com/koggi-dev/koggi/internal/config"
)

// Options controls how a backup is produced.
type Options struct {
	Output   string // explicit output path; derived from the profile when empty
	Format   string // "plain" (default) or "custom"
	Compress bool   // custom format only
}

// Result describes a completed backup or restore run.
type Result struct {
	File     string
	Size     int64
	Duration time.Duration
}

// Backup dumps the profile's database with pg_dump. The output lands in
// the profile's backup directory unless opts.Output names a path.
func Backup(res *binaries.Resolver, p config.Profile, opts Options) (Result, error) {
	if opts.Format == "" {
		opts.Format = "plain"
	}
	if opts.Format != "plain" && opts.Format != "custom" {
		return Result{}, fmt.Errorf("unknown backup format %q (want plain or custom)", opts.Format)
	}

	pgDump, err := res.Resolve(binaries.PgDump)
	if err != nil {
		return Result{}, err
	}

	out := opts.Output
	if out == "" {
		out = defaultOutputPath(p, opts.Format)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	args := backupArgs(p, opts, out)
	start := time.Now()

	cmd := exec.Command(pgDump, args...)
	cmd.Env = pgEnv(p)
	if combined, err := cmd.CombinedOutput(); err != nil {
		return Result{}, fmt.Errorf("pg_dump failed: %w (output: %s)", err, strings.TrimSpace(string(combined)))
	}

	result := Result{File: out, Duration: time.Since(start)}
	if info, err := os.Stat(out); err == nil {
		result.Size = info.Size()
	}
	return result, nil
}

// defaultOutputPath is <backupDir>/<db>_<timestamp>.sql, with .backup
// for custom-format archives.
func defaultOutputPath(p config.Profile, format string) string {
	ext := ".sql"
	if format == "custom" {
		ext = ".backup"
	}
	name := fmt.Sprintf("%s_%s%s", p.DBName, time.Now().Format("20060102_150405"), ext)
	return filepath.Join(p.BackupDir, name)
}

// backupArgs builds the pg_dump argv. Split out so tests can check the
// invocation without running anything.
func backupArgs(p config.Profile, opts Options, out string) []string {
	args := []string{
		"-h", p.Host,
		"-p", strconv.Itoa(p.Port),
		"-U", p.User,
		"-d", p.DBName,
		"-f", out,
	}
	if opts.Format == "custom" {
		args = append(args, "--format=custom")
		if opts.Compress {
			args = append(args, "--compress=9")
		}
	} else {
		args = append(args, "--format=plain")
	}
	return args
}

// pgEnv returns the subprocess environment with libpq credentials
// applied. The password travels via PGPASSWORD rather than argv so it
// stays out of the process list.
func pgEnv(p config.Profile) []string {
	env := os.Environ()
	if p.Password != "" {
		env = append(env, "PGPASSWORD="+p.Password)
	}
	if p.SSLMode != "" {
		env = append(env, "PGSSLMODE="+p.SSLMode)
	}
	return env
}
