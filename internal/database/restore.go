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

// Restore replays file into the profile's database. Custom-format
// archives (.backup, .dump) go through pg_restore; plain SQL dumps go
// through psql.
func Restore(res *binaries.Resolver, p config.Profile, file string) (Result, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return Result{}, fmt.Errorf("invalid backup file path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Result{}, fmt.Errorf("backup file not found: %w", err)
	}

	tool, args := restoreCommand(p, abs)
	bin, err := res.Resolve(tool)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	cmd := exec.Command(bin, args...)
	cmd.Env = pgEnv(p)
	if combined, err := cmd.CombinedOutput(); err != nil {
		return Result{}, fmt.Errorf("%s failed: %w (output: %s)", tool, err, strings.TrimSpace(string(combined)))
	}

	return Result{File: abs, Size: info.Size(), Duration: time.Since(start)}, nil
}

// restoreCommand picks the client tool and argv used to restore file.
func restoreCommand(p config.Profile, file string) (tool string, args []string) {
	conn := []string{
		"-h", p.Host,
		"-p", strconv.Itoa(p.Port),
		"-U", p.User,
		"-d", p.DBName,
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".backup", ".dump":
		return binaries.PgRestore, append(conn, "-v", file)
	default:
		return binaries.Psql, append(conn, "-f", file)
	}
}
