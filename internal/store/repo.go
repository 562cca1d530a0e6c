package store

import (
	"context"
	"errors"
	"time"

	"github.com/DuneReaper/dune-reapers-bot/internal/domain"
)

// ErrNotFound is returned when a member has no record yet.
var ErrNotFound = errors.New("user not found")

// DecayUpdate is one record's outcome of a decay sweep.
type DecayUpdate struct {
	MemberID string
	NewScore float64
}

// Repo defines storage operations over persisted user activity records.
type Repo interface {
	// AddPoints atomically upserts the member's record: a new record starts
	// at 1000+delta, an existing one gains delta. last_active is refreshed
	// to now in the same statement.
	AddPoints(ctx context.Context, memberID string, delta float64, now time.Time) error
	GetUser(ctx context.Context, memberID string) (*domain.UserRecord, error)
	// SetBreak marks the member on break with the declared window,
	// creating the record with the default score if needed.
	SetBreak(ctx context.Context, memberID string, start, end time.Time) error
	// ClearBreak unconditionally ends a break, clearing both window fields.
	ClearBreak(ctx context.Context, memberID string) error
	ListOnBreak(ctx context.Context) ([]domain.UserRecord, error)
	// ListAll returns a snapshot of every record, for the decay sweep.
	ListAll(ctx context.Context) ([]domain.UserRecord, error)
	// ApplyDecay commits a sweep's score updates in a single transaction,
	// setting each record's last_active to the sweep time.
	ApplyDecay(ctx context.Context, updates []DecayUpdate, sweepTime time.Time) error
	Close() error
}
