// Package rewind is an in-process undo/redo engine.
//
// It records reversible commands applied to an externally owned target
// and moves backward and forward through that history deterministically.
// Key concepts:
//
// # Commands
//
// A Command carries one reversible unit of work over a target of type T,
// with Apply and Undo methods. Optional capabilities are discovered by
// type assertion:
//   - Redoer: a redo distinct from a fresh Apply
//   - Merger: coalesce consecutive commands into one log entry
//   - fmt.Stringer: a display description
//
// # Record
//
// Record keeps a linear log of applied commands and a cursor. The target
// state always equals the initial state advanced by the log up to the
// cursor:
//
//	rec := rewind.NewRecord(doc, rewind.WithLimit(100))
//
//	// Apply commands
//	if err := rec.Push(cmd); err != nil { ... }
//
//	// Move through history
//	rec.Undo()
//	rec.Redo()
//	rec.GoTo(0)
//
// Pushing with undone commands ahead of the cursor discards them; a
// bounded record evicts its oldest entry instead of growing. A saved
// marker tracks the position matching the target's persisted state, and
// a signal listener observes every transition synchronously.
//
// # History
//
// History extends the record into a branch tree: pushing over undone
// commands diverges into a new branch instead of discarding, and JumpTo
// reaches any position on any branch:
//
//	h := rewind.NewHistory(doc)
//	h.Push(a)
//	h.Undo()
//	h.Push(b)          // the undone future becomes a branch
//	h.JumpTo(1, 1)     // back to the abandoned timeline
//
// # Queue and Checkpoint
//
// Queue stages actions without touching the target and replays them on
// Commit. Checkpoint applies operations immediately but can Cancel the
// whole run, restoring the exact pre-checkpoint state; its history
// counterpart HistoryCheckpoint cancels by jumping back, leaving any
// branches the run created in place. All detect out-of-band mutation of
// their timeline and refuse with ErrStaleView.
//
// # Failure contract
//
// Every operation either completes or reports an error without breaking
// the cursor invariant. A failed Push returns command ownership inside
// *ApplyError; a failed Undo leaves the command applied; stepwise moves
// keep their partial progress. Boundary conditions (nothing to undo or
// redo) are sentinel errors, not failures.
//
// # Concurrency
//
// A Record or History is single-owner: no internal locking, and signal
// listeners run inside the mutating call. Wrap access in your own mutex
// if multiple goroutines share one.
package rewind
