package runlock

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireRecordsOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repost.lock")

	lock, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer lock.Release()

	owner, err := ReadOwner(path)
	if err != nil {
		t.Fatalf("ReadOwner failed: %v", err)
	}
	if owner.PID != os.Getpid() {
		t.Fatalf("expected own pid %d, got %d", os.Getpid(), owner.PID)
	}
	if owner.StartedAt.IsZero() {
		t.Fatal("expected started_at to be recorded")
	}
}

func TestReleaseAllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repost.lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	second, err := Acquire(path)
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	defer second.Release()
}

func TestReadOwnerRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repost.lock")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := ReadOwner(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestOwnerStaleAfter(t *testing.T) {
	owner := Owner{StartedAt: time.Now().Add(-2 * time.Hour)}
	if !owner.StaleAfter(time.Hour) {
		t.Fatal("expected stale owner")
	}
	if owner.StaleAfter(3 * time.Hour) {
		t.Fatal("expected fresh owner")
	}
	if (Owner{}).StaleAfter(time.Hour) {
		t.Fatal("zero start time is never stale")
	}
}
