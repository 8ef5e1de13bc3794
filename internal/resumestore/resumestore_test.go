package resumestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/marketloop/pathfinder/internal/lexicon"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "pathfinder-resumestore-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := Open(filepath.Join(tmpDir, "resume.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMarkDoneAndIsDone(t *testing.T) {
	store := openTestStore(t)
	runID := NewRunID()
	target := lexicon.ExchangeCurrency{Exchange: 1, Currency: 5}

	done, err := store.IsDone(runID, target)
	if err != nil {
		t.Fatalf("IsDone() error = %v", err)
	}
	if done {
		t.Error("expected target to not be done before MarkDone")
	}

	if err := store.MarkDone(runID, target); err != nil {
		t.Fatalf("MarkDone() error = %v", err)
	}

	done, err = store.IsDone(runID, target)
	if err != nil {
		t.Fatalf("IsDone() error = %v", err)
	}
	if !done {
		t.Error("expected target to be done after MarkDone")
	}
}

func TestMarkDoneIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	runID := NewRunID()
	target := lexicon.ExchangeCurrency{Exchange: 2, Currency: 7}

	if err := store.MarkDone(runID, target); err != nil {
		t.Fatalf("first MarkDone() error = %v", err)
	}
	if err := store.MarkDone(runID, target); err != nil {
		t.Fatalf("second MarkDone() error = %v", err)
	}

	done, err := store.IsDone(runID, target)
	if err != nil {
		t.Fatalf("IsDone() error = %v", err)
	}
	if !done {
		t.Error("expected target to be done")
	}
}

func TestRunIDsAreIsolated(t *testing.T) {
	store := openTestStore(t)
	target := lexicon.ExchangeCurrency{Exchange: 1, Currency: 1}

	runA := NewRunID()
	runB := NewRunID()

	if err := store.MarkDone(runA, target); err != nil {
		t.Fatalf("MarkDone() error = %v", err)
	}

	doneA, err := store.IsDone(runA, target)
	if err != nil {
		t.Fatalf("IsDone(runA) error = %v", err)
	}
	doneB, err := store.IsDone(runB, target)
	if err != nil {
		t.Fatalf("IsDone(runB) error = %v", err)
	}
	if !doneA {
		t.Error("expected target done under runA")
	}
	if doneB {
		t.Error("expected target not done under a different run id")
	}
}

func TestPendingFiltersCompletedTargets(t *testing.T) {
	store := openTestStore(t)
	runID := NewRunID()

	targets := []lexicon.ExchangeCurrency{
		{Exchange: 1, Currency: 0},
		{Exchange: 1, Currency: 1},
		{Exchange: 2, Currency: 0},
	}

	if err := store.MarkDone(runID, targets[1]); err != nil {
		t.Fatalf("MarkDone() error = %v", err)
	}

	pending, err := store.Pending(runID, targets)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending targets, got %d", len(pending))
	}
	for _, p := range pending {
		if p == targets[1] {
			t.Errorf("expected completed target %v to be filtered out", targets[1])
		}
	}
}

func TestNewRunIDsAreUnique(t *testing.T) {
	if NewRunID() == NewRunID() {
		t.Error("expected distinct run ids")
	}
}
