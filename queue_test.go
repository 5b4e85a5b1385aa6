package rewind

import (
	"errors"
	"testing"
)

func TestQueueStagesWithoutApplying(t *testing.T) {
	target := 0
	rec := NewRecord(&target)
	q := NewQueue[*int](rec)

	q.Push(&add{n: 1})
	q.Push(&add{n: 2})
	q.Undo()
	q.GoTo(0)

	if q.Len() != 4 {
		t.Errorf("Len = %d, want 4", q.Len())
	}
	if target != 0 || rec.Len() != 0 {
		t.Errorf("staging should not touch the record; target/len = %d/%d", target, rec.Len())
	}
}

func TestQueueCommitReplaysInOrder(t *testing.T) {
	target := 0
	rec := NewRecord(&target)
	q := NewQueue[*int](rec)

	q.Push(&add{n: 1})
	q.Push(&add{n: 2})
	q.Undo()
	q.Push(&add{n: 4})

	n, err := q.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if n != 4 {
		t.Errorf("Commit = %d actions, want 4", n)
	}
	if target != 5 {
		t.Errorf("target = %d, want 5", target)
	}
	if rec.Len() != 2 || rec.Cursor() != 2 {
		t.Errorf("Len/Cursor = %d/%d, want 2/2", rec.Len(), rec.Cursor())
	}
}

func TestQueueCommitStopsAtFirstFailure(t *testing.T) {
	target := 0
	rec := NewRecord(&target)
	q := NewQueue[*int](rec)

	third := &flaky{n: 4, okApplies: 1}
	q.Push(&add{n: 1})
	q.Push(&flaky{n: 2})
	q.Push(third)

	n, err := q.Commit()
	if err == nil {
		t.Fatal("Commit should fail")
	}
	if n != 1 {
		t.Errorf("Commit = %d actions, want 1 before the failure", n)
	}
	if target != 1 {
		t.Errorf("target = %d, want 1", target)
	}
	if third.applies != 0 {
		t.Error("actions after the failure must not run")
	}
}

func TestQueueCancel(t *testing.T) {
	target := 0
	rec := NewRecord(&target)
	q := NewQueue[*int](rec)

	q.Push(&add{n: 1})
	q.Cancel()

	if n, err := q.Commit(); n != 0 || err != nil {
		t.Errorf("Commit after Cancel = %d,%v, want 0,nil", n, err)
	}
	if target != 0 {
		t.Errorf("target = %d, want 0", target)
	}
}

func TestQueueCommitTwice(t *testing.T) {
	target := 0
	rec := NewRecord(&target)
	q := NewQueue[*int](rec)
	q.Push(&add{n: 1})

	if _, err := q.Commit(); err != nil {
		t.Fatal(err)
	}
	if n, err := q.Commit(); n != 0 || err != nil {
		t.Errorf("second Commit = %d,%v, want 0,nil", n, err)
	}
	if target != 1 {
		t.Errorf("target = %d, want 1 after a single replay", target)
	}
}

func TestQueueStaleRecord(t *testing.T) {
	target := 0
	rec := NewRecord(&target)
	q := NewQueue[*int](rec)
	q.Push(&add{n: 1})

	// The record moves on without the queue.
	pushAll(t, rec, 2)

	n, err := q.Commit()
	if !errors.Is(err, ErrStaleView) {
		t.Fatalf("Commit = %v, want ErrStaleView", err)
	}
	if n != 0 {
		t.Errorf("Commit = %d actions, want 0", n)
	}
	if target != 2 {
		t.Errorf("target = %d, want 2; nothing may replay", target)
	}
}

func TestQueueOverHistory(t *testing.T) {
	target := 0
	h := NewHistory(&target)
	pushAll(t, h, 1)

	q := NewQueue[*int](h)
	q.Undo()
	q.Push(&add{n: 2})

	if _, err := q.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if target != 2 {
		t.Errorf("target = %d, want 2", target)
	}
	// The replayed push diverged over the undone command.
	if got := len(h.Branches()); got != 2 {
		t.Errorf("branches = %d, want 2", got)
	}
}

func TestQueueStaleAfterPrune(t *testing.T) {
	target := 0
	h := NewHistory(&target)
	pushAll(t, h, 1)
	if err := h.Undo(); err != nil {
		t.Fatal(err)
	}
	pushAll(t, h, 2)

	q := NewQueue[*int](h)
	q.Undo()

	// Pruning restructures the history; the queue must notice even
	// though the current timeline did not move.
	if err := h.Prune(1); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Commit(); !errors.Is(err, ErrStaleView) {
		t.Errorf("Commit = %v, want ErrStaleView", err)
	}
}
