package db

// Run history. Every sweep is stored with all of its verdicts, so past
// runs can be listed and inspected from the CLI.

import (
	"context"
	"errors"
	"fmt"

	"github.com/cedana/netbench/pkg/runner"
)

const (
	BACKEND_BOLT   = "bolt"
	BACKEND_SQLITE = "sqlite"
	BACKEND_NONE   = "none"
)

var ErrNotFound = errors.New("run not found")

type DB interface {
	// Getters
	GetRun(ctx context.Context, id string) (*runner.Report, error)

	// Setters (create or update)
	PutRun(ctx context.Context, report *runner.Report) error

	// Listers (newest first, all runs if limit <= 0)
	ListRuns(ctx context.Context, limit int) ([]*runner.Report, error)

	// Deleters
	DeleteRun(ctx context.Context, id string) error

	Close() error
}

// New returns the history store for a backend. Returns a nil DB for
// BACKEND_NONE, meaning history is disabled.
func New(ctx context.Context, backend string, path string) (DB, error) {
	switch backend {
	case BACKEND_BOLT, "":
		return NewBoltDB(path), nil
	case BACKEND_SQLITE:
		return NewSqliteDB(ctx, path)
	case BACKEND_NONE:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown db backend %q", backend)
	}
}
