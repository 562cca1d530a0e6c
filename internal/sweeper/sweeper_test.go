package sweeper

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DuneReaper/dune-reapers-bot/internal/store"
)

func testSweeper(t *testing.T) (*Sweeper, *store.SQLiteRepo) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "elo.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return New(repo, zap.NewNop(), 24*time.Hour), repo
}

func TestSweep_PenalizesInactiveMember(t *testing.T) {
	s, repo := testSweeper(t)
	ctx := context.Background()
	now := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	// Active 3 days ago at score 1000: loss = floor(100*1.5^2) = 225.
	if err := repo.AddPoints(ctx, "m1", 0, now.AddDate(0, 0, -3)); err != nil {
		t.Fatal(err)
	}

	decayed, err := s.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if decayed != 1 {
		t.Fatalf("decayed = %d, want 1", decayed)
	}

	u, err := repo.GetUser(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if u.Score != 775 {
		t.Errorf("Score = %v, want 775", u.Score)
	}
	if u.LastActive == nil || !u.LastActive.Equal(now) {
		t.Errorf("LastActive = %v, want reset to sweep time %v", u.LastActive, now)
	}
}

func TestSweep_GraceWindow(t *testing.T) {
	s, repo := testSweeper(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Exactly two whole days inactive is still within grace.
	if err := repo.AddPoints(ctx, "m1", 0, now.Add(-49*time.Hour)); err != nil {
		t.Fatal(err)
	}

	decayed, err := s.Sweep(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if decayed != 0 {
		t.Errorf("decayed = %d, want 0 (grace window)", decayed)
	}
}

func TestSweep_SkipsOnBreak(t *testing.T) {
	s, repo := testSweeper(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repo.AddPoints(ctx, "m1", 0, now.AddDate(0, 0, -3)); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetBreak(ctx, "m1", now.AddDate(0, 0, -4), now.AddDate(0, 0, 4)); err != nil {
		t.Fatal(err)
	}

	decayed, err := s.Sweep(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if decayed != 0 {
		t.Fatalf("decayed = %d, want 0", decayed)
	}
	u, _ := repo.GetUser(ctx, "m1")
	if u.Score != 1000 {
		t.Errorf("Score = %v, want unchanged 1000", u.Score)
	}
}

func TestSweep_SkipsNeverActive(t *testing.T) {
	s, repo := testSweeper(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Record created by an absence request only: no activity baseline.
	if err := repo.SetBreak(ctx, "m1", now, now.AddDate(0, 0, 7)); err != nil {
		t.Fatal(err)
	}
	if err := repo.ClearBreak(ctx, "m1"); err != nil {
		t.Fatal(err)
	}

	decayed, err := s.Sweep(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if decayed != 0 {
		t.Errorf("decayed = %d, want 0 for never-active member", decayed)
	}
}

func TestSweep_FloorsAtZero(t *testing.T) {
	s, repo := testSweeper(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Score 50 after a 10-day gap: computed loss far exceeds the score.
	if err := repo.AddPoints(ctx, "m1", -950, now.AddDate(0, 0, -10)); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Sweep(ctx, now); err != nil {
		t.Fatal(err)
	}
	u, _ := repo.GetUser(ctx, "m1")
	if u.Score != 0 {
		t.Errorf("Score = %v, want 0", u.Score)
	}
}

func TestSweep_BackToBackIsIdempotent(t *testing.T) {
	s, repo := testSweeper(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repo.AddPoints(ctx, "m1", 0, now.AddDate(0, 0, -5)); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Sweep(ctx, now); err != nil {
		t.Fatal(err)
	}
	u1, _ := repo.GetUser(ctx, "m1")

	// Second run a moment later: last_active was advanced to the first
	// sweep's time, so the grace window re-engages.
	decayed, err := s.Sweep(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if decayed != 0 {
		t.Errorf("second sweep decayed %d records, want 0", decayed)
	}
	u2, _ := repo.GetUser(ctx, "m1")
	if u2.Score != u1.Score {
		t.Errorf("score changed across back-to-back sweeps: %v -> %v", u1.Score, u2.Score)
	}
}
