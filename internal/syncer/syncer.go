// Package syncer reconciles the local store with the spreadsheet
// backup: a full-snapshot push, a last-write-wins pull, and a debounced
// scheduler that decides when the push runs automatically.
package syncer

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
)

var (
	// ErrPushFailed wraps any network, authorization or remote error
	// during a push. The pending queue is left untouched for retry.
	ErrPushFailed = errors.New("sync push failed")
	// ErrPullFailed wraps a failed or malformed pull. It is raised
	// before any local write when the remote header is unusable.
	ErrPullFailed = errors.New("sync pull failed")
	// ErrSyncBusy means another push or pull is already in flight.
	ErrSyncBusy = errors.New("sync already running")
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "syncer").Logger()

// SetLogger replaces the package logger; main wires the configured one.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "syncer").Logger()
}
