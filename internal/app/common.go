package app

import (
	"fmt"
	"os"

	"github.com/koggi-dev/koggi/internal/config"
	"github.com/koggi-dev/koggi/internal/database"
	"github.com/koggi-dev/koggi/internal/store"
)

// loadProfile loads all profiles and returns the named one.
func loadProfile(name string) (config.Profile, error) {
	profiles, err := config.LoadProfiles()
	if err != nil {
		return config.Profile{}, err
	}
	return config.Get(profiles, name)
}

// recordOperation writes one history row for a backup or restore run.
// History is best-effort: a failure here must not fail the operation
// that already succeeded, so problems only go to stderr.
func recordOperation(profile, kind string, result database.Result, opErr error) {
	s, err := openStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open history database: %v\n", err)
		return
	}
	defer s.Close()

	op := store.Operation{
		Profile:   profile,
		Kind:      kind,
		File:      result.File,
		SizeBytes: result.Size,
		Duration:  result.Duration,
		Status:    store.StatusOK,
	}
	if opErr != nil {
		op.Status = store.StatusError
		op.Error = opErr.Error()
	}

	if _, err := s.RecordOperation(op); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not record operation history: %v\n", err)
	}
}
