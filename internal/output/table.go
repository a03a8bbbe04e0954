// Package output provides terminal output utilities for koggi:
// table rendering for profiles, backup files, operation history and
// binary status, plus a progress bar for downloads. Tables use plain
// ASCII with ANSI colors when stdout is a terminal.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that NO_COLOR is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// BackupFile is one row of the backup selector table.
type BackupFile struct {
	Name      string
	SizeBytes int64
	ModTime   time.Time
}

// RenderBackupPage renders one page of the backup file listing. Rows
// are numbered with their 1-based index within the page; the header
// shows the 1-based page number and the overall file count.
func RenderBackupPage(files []BackupFile, page, pageSize int) string {
	totalPages := (len(files) + pageSize - 1) / pageSize
	start := page * pageSize
	end := start + pageSize
	if end > len(files) {
		end = len(files)
	}

	var sb strings.Builder
	sb.WriteString("\nAvailable backup files\n")
	sb.WriteString(fmt.Sprintf("Page %d of %d · %d files total\n\n", page+1, totalPages, len(files)))

	if start >= end {
		sb.WriteString("No backup files on this page.\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("%-3s %-40s %-9s %-17s %s\n",
		"#", "File", "Size", "Modified", "Age"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	for i, f := range files[start:end] {
		sb.WriteString(fmt.Sprintf("%-3d %-40s %-9s %-17s %s\n",
			i+1,
			truncate(f.Name, 40),
			FormatSize(f.SizeBytes),
			f.ModTime.Format("2006-01-02 15:04"),
			FormatRelativeTime(f.ModTime)))
	}

	return sb.String()
}

// ProfileRow is one row of the profile listing.
type ProfileRow struct {
	Name      string
	DBName    string
	Host      string
	Port      int
	SSLMode   string
	BackupDir string
}

// RenderProfileTable renders the detected connection profiles.
func RenderProfileTable(profiles []ProfileRow) string {
	if len(profiles) == 0 {
		return "No profiles found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s %-20s %-20s %-6s %-9s %s\n",
		"Profile", "Database", "Host", "Port", "SSL", "Backup Dir"))
	sb.WriteString(strings.Repeat("─", 88))
	sb.WriteString("\n")

	for _, p := range profiles {
		sb.WriteString(fmt.Sprintf("%-12s %-20s %-20s %-6d %-9s %s\n",
			truncate(p.Name, 12),
			truncate(p.DBName, 20),
			truncate(p.Host, 20),
			p.Port,
			p.SSLMode,
			p.BackupDir))
	}

	return sb.String()
}

// HistoryRow is one row of the operation history listing.
type HistoryRow struct {
	Profile   string
	Kind      string
	File      string
	SizeBytes int64
	Status    string
	CreatedAt time.Time
}

// RenderHistoryTable renders recorded backup/restore operations,
// expected pre-sorted newest first.
func RenderHistoryTable(rows []HistoryRow) string {
	if len(rows) == 0 {
		return "No operations recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s %-9s %-36s %-9s %-8s %s\n",
		"Profile", "Kind", "File", "Size", "Status", "When"))
	sb.WriteString(strings.Repeat("─", 92))
	sb.WriteString("\n")

	for _, r := range rows {
		status := r.Status
		switch r.Status {
		case "ok":
			status = colorize(colorGreen, r.Status)
		case "error":
			status = colorize(colorRed, r.Status)
		}
		sb.WriteString(fmt.Sprintf("%-12s %-9s %-36s %-9s %-8s %s\n",
			truncate(r.Profile, 12),
			r.Kind,
			truncate(r.File, 36),
			FormatSize(r.SizeBytes),
			status,
			FormatRelativeTime(r.CreatedAt)))
	}

	return sb.String()
}

// BinaryRow is one row of the binaries status listing.
type BinaryRow struct {
	Tool  string
	Found bool
	Path  string
}

// RenderBinaryTable renders resolver/cache status for the client tools.
func RenderBinaryTable(rows []BinaryRow) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s %-11s %s\n", "Tool", "Status", "Path"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, r := range rows {
		status := colorize(colorRed, "not found")
		if r.Found {
			status = colorize(colorGreen, "found")
		}
		sb.WriteString(fmt.Sprintf("%-12s %-11s %s\n", r.Tool, status, r.Path))
	}

	return sb.String()
}

// FormatSize converts bytes to human-readable size (GB, MB, KB).
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.0f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.0f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatRelativeTime converts a timestamp to relative time
// (e.g. "2 days ago").
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
