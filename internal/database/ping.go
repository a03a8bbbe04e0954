package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/koggi-dev/koggi/internal/config"
)

const pingTimeout = 10 * time.Second

// Ping opens a connection for the profile and reports the server
// version string. Connectivity checks do not shell out; they go through
// the pgx driver directly.
func Ping(ctx context.Context, p config.Profile) (string, error) {
	db, err := sql.Open("pgx", DSN(p))
	if err != nil {
		return "", fmt.Errorf("failed to open connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	var version string
	if err := db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	return version, nil
}

// DSN builds a postgres:// connection URL for the profile.
func DSN(p config.Profile) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   "/" + p.DBName,
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	} else {
		u.User = url.User(p.User)
	}
	q := url.Values{}
	if p.SSLMode != "" {
		q.Set("sslmode", p.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
