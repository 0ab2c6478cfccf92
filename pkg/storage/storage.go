package storage

import (
	"context"
	"time"

	"github.com/ignatij/trialtasks/pkg/models"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a requested row doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateNumber is returned when a task number is already taken
	ErrDuplicateNumber = errors.New("task number already exists")

	// ErrValueTooLong is returned when a value exceeds its column size
	ErrValueTooLong = errors.New("value too long")
)

// Column sizes shared by every Store implementation.
const (
	MaxLookupNameLen = 100
	MaxNumberLen     = 100
	MaxTitleLen      = 300
	MaxDurationLen   = 100
	MaxTargetLen     = 100
)

// Store defines the storage operations for trialtasks. A Store returned by
// Begin is bound to a transaction and must be finished with Commit or
// Rollback.
type Store interface {
	Begin(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error
	Close() error
	Ping(ctx context.Context) error

	// Lookups returns the repository of one categorical table.
	Lookups(kind models.LookupKind) LookupRepository
	Tasks() TaskRepository
}

// LookupRepository reads and writes rows of a single lookup table.
type LookupRepository interface {
	// Create always inserts a new row, even if the name already exists.
	Create(ctx context.Context, name string) (int64, error)
	Get(ctx context.Context, id int64) (models.Lookup, error)
	// List returns rows ordered by id; a non-empty name restricts it to
	// exact matches.
	List(ctx context.Context, name string, page models.Page) ([]models.Lookup, error)
	Count(ctx context.Context) (int, error)
}

// TaskRepository reads and writes task rows. Reads join the five lookup
// tables and resolve their names.
type TaskRepository interface {
	Create(ctx context.Context, t models.Task) (int64, error)
	Get(ctx context.Context, id int64) (models.TaskRecord, error)
	// Search applies the filter conjunctively, orders by updated_at
	// ascending and then applies the page window.
	Search(ctx context.Context, f models.TaskFilter) ([]models.TaskRecord, error)
	// ListUpdatedWithin returns tasks with now-window <= updated_at <= now,
	// ordered by id. now is the clock that stamps updated_at.
	ListUpdatedWithin(ctx context.Context, window time.Duration, page models.Page) ([]models.TaskRecord, error)
	Count(ctx context.Context) (int, error)
}
