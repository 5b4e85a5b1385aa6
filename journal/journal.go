package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/rewind"
)

// Version is the journal format version this package writes.
const Version = 1

// Errors returned by journal operations.
var (
	ErrUnsupportedVersion = errors.New("unsupported journal version")
	ErrMalformed          = errors.New("malformed journal")
)

// Codec encodes and decodes commands for storage. Implementations own
// the mapping from bytes back to concrete command types.
type Codec[T any] interface {
	EncodeCommand(cmd rewind.Command[T]) ([]byte, error)
	DecodeCommand(data []byte) (rewind.Command[T], error)
}

// Wire format. Entries keep command bytes opaque.

type journalEntry struct {
	ID   uuid.UUID       `json:"id"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

type recordJournal struct {
	Version int            `json:"version"`
	Cursor  int            `json:"cursor"`
	Saved   int            `json:"saved"`
	Limit   int            `json:"limit"`
	Entries []journalEntry `json:"entries"`
}

type atJSON struct {
	Branch int `json:"branch"`
	Index  int `json:"index"`
}

type branchJournal struct {
	ID      int            `json:"id"`
	Parent  atJSON         `json:"parent"`
	Res     atJSON         `json:"res"`
	Entries []journalEntry `json:"entries"`
}

type historyJournal struct {
	Version  int             `json:"version"`
	Current  int             `json:"current"`
	Next     int             `json:"next"`
	Cursor   int             `json:"cursor"`
	Saved    int             `json:"saved"`
	SavedAt  atJSON          `json:"saved_at"`
	Branches []branchJournal `json:"branches"`
}

// Encode renders a record snapshot in the journal wire form.
func Encode[T any](snap rewind.RecordSnapshot[T], codec Codec[T]) ([]byte, error) {
	entries, err := encodeEntries(snap.Commands, snap.IDs, snap.Times, codec)
	if err != nil {
		return nil, err
	}
	j := recordJournal{
		Version: Version,
		Cursor:  snap.Cursor,
		Saved:   snap.Saved,
		Limit:   snap.Limit,
		Entries: entries,
	}
	return json.MarshalIndent(j, "", "  ")
}

// Save writes a record snapshot to path.
func Save[T any](path string, snap rewind.RecordSnapshot[T], codec Codec[T]) error {
	data, err := Encode(snap, codec)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// Load reads a record journal from path and rebuilds the record around
// target. The target's state must already match the journal's cursor;
// use Replay to rebuild from the journal alone.
func Load[T any](path string, target T, codec Codec[T], opts ...rewind.Option[T]) (*rewind.Record[T], error) {
	snap, err := readRecord(path, codec)
	if err != nil {
		return nil, err
	}
	return rewind.RestoreRecord(target, snap, opts...)
}

// Replay reads a record journal from path, brings target to the
// journaled state by applying the logged commands up to the cursor, and
// rebuilds the record around it. Use it when only the journal survives,
// such as on process start. target must be in its initial state; on
// error it may have been partially advanced, so replay into a scratch
// value.
func Replay[T any](path string, target T, codec Codec[T], opts ...rewind.Option[T]) (*rewind.Record[T], error) {
	snap, err := readRecord(path, codec)
	if err != nil {
		return nil, err
	}
	// Out-of-range cursors fall through for RestoreRecord to report.
	for i := 0; i < snap.Cursor && i < len(snap.Commands); i++ {
		if err := snap.Commands[i].Apply(target); err != nil {
			return nil, fmt.Errorf("%s: replay command %d: %w", path, i, err)
		}
	}
	return rewind.RestoreRecord(target, snap, opts...)
}

// readRecord reads and decodes a record journal into a snapshot.
func readRecord[T any](path string, codec Codec[T]) (rewind.RecordSnapshot[T], error) {
	var snap rewind.RecordSnapshot[T]
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	var j recordJournal
	if err := json.Unmarshal(data, &j); err != nil {
		return snap, fmt.Errorf("%s: %w: %v", path, ErrMalformed, err)
	}
	if j.Version != Version {
		return snap, fmt.Errorf("%s: %w: %d", path, ErrUnsupportedVersion, j.Version)
	}
	snap.Cursor = j.Cursor
	snap.Saved = j.Saved
	snap.Limit = j.Limit
	snap.Commands, snap.IDs, snap.Times, err = decodeEntries(j.Entries, codec)
	if err != nil {
		return snap, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// EncodeHistory renders a history snapshot in the journal wire form.
func EncodeHistory[T any](snap rewind.HistorySnapshot[T], codec Codec[T]) ([]byte, error) {
	j := historyJournal{
		Version: Version,
		Current: snap.Current,
		Next:    snap.Next,
		Cursor:  snap.Cursor,
		Saved:   snap.Saved,
		SavedAt: atJSON{Branch: snap.SavedAt.Branch, Index: snap.SavedAt.Index},
	}
	for _, br := range snap.Branches {
		entries, err := encodeEntries(br.Commands, br.IDs, br.Times, codec)
		if err != nil {
			return nil, fmt.Errorf("branch %d: %w", br.ID, err)
		}
		j.Branches = append(j.Branches, branchJournal{
			ID:      br.ID,
			Parent:  atJSON{Branch: br.Parent.Branch, Index: br.Parent.Index},
			Res:     atJSON{Branch: br.Res.Branch, Index: br.Res.Index},
			Entries: entries,
		})
	}
	return json.MarshalIndent(j, "", "  ")
}

// SaveHistory writes a history snapshot to path.
func SaveHistory[T any](path string, snap rewind.HistorySnapshot[T], codec Codec[T]) error {
	data, err := EncodeHistory(snap, codec)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// LoadHistory reads a history journal from path and rebuilds the
// history around target. The target's state must already match the
// journal's cursor on its current branch; use ReplayHistory to rebuild
// from the journal alone.
func LoadHistory[T any](path string, target T, codec Codec[T], opts ...rewind.HistoryOption[T]) (*rewind.History[T], error) {
	snap, err := readHistory(path, codec)
	if err != nil {
		return nil, err
	}
	return rewind.RestoreHistory(target, snap, opts...)
}

// ReplayHistory reads a history journal from path, brings target to the
// journaled state by applying the current branch's commands up to the
// cursor, and rebuilds the history around it. Like Replay, target must
// be in its initial state and may be partially advanced on error.
func ReplayHistory[T any](path string, target T, codec Codec[T], opts ...rewind.HistoryOption[T]) (*rewind.History[T], error) {
	snap, err := readHistory(path, codec)
	if err != nil {
		return nil, err
	}
	// The current branch stores its full timeline; a missing branch or
	// out-of-range cursor falls through for RestoreHistory to report.
	for _, br := range snap.Branches {
		if br.ID != snap.Current {
			continue
		}
		for i := 0; i < snap.Cursor && i < len(br.Commands); i++ {
			if err := br.Commands[i].Apply(target); err != nil {
				return nil, fmt.Errorf("%s: replay command %d: %w", path, i, err)
			}
		}
		break
	}
	return rewind.RestoreHistory(target, snap, opts...)
}

// readHistory reads and decodes a history journal into a snapshot.
func readHistory[T any](path string, codec Codec[T]) (rewind.HistorySnapshot[T], error) {
	var snap rewind.HistorySnapshot[T]
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	var j historyJournal
	if err := json.Unmarshal(data, &j); err != nil {
		return snap, fmt.Errorf("%s: %w: %v", path, ErrMalformed, err)
	}
	if j.Version != Version {
		return snap, fmt.Errorf("%s: %w: %d", path, ErrUnsupportedVersion, j.Version)
	}
	snap.Current = j.Current
	snap.Next = j.Next
	snap.Cursor = j.Cursor
	snap.Saved = j.Saved
	snap.SavedAt = rewind.At{Branch: j.SavedAt.Branch, Index: j.SavedAt.Index}
	for _, br := range j.Branches {
		bs := rewind.BranchSnapshot[T]{
			ID:     br.ID,
			Parent: rewind.At{Branch: br.Parent.Branch, Index: br.Parent.Index},
			Res:    rewind.At{Branch: br.Res.Branch, Index: br.Res.Index},
		}
		bs.Commands, bs.IDs, bs.Times, err = decodeEntries(br.Entries, codec)
		if err != nil {
			return snap, fmt.Errorf("%s: branch %d: %w", path, br.ID, err)
		}
		snap.Branches = append(snap.Branches, bs)
	}
	return snap, nil
}

func encodeEntries[T any](cmds []rewind.Command[T], ids []uuid.UUID, times []time.Time, codec Codec[T]) ([]journalEntry, error) {
	entries := make([]journalEntry, len(cmds))
	for i, cmd := range cmds {
		data, err := codec.EncodeCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("encode command %d: %w", i, err)
		}
		entries[i] = journalEntry{Data: data}
		if i < len(ids) {
			entries[i].ID = ids[i]
		}
		if i < len(times) {
			entries[i].Time = times[i]
		}
	}
	return entries, nil
}

func decodeEntries[T any](entries []journalEntry, codec Codec[T]) ([]rewind.Command[T], []uuid.UUID, []time.Time, error) {
	cmds := make([]rewind.Command[T], len(entries))
	ids := make([]uuid.UUID, len(entries))
	times := make([]time.Time, len(entries))
	for i, e := range entries {
		cmd, err := codec.DecodeCommand(e.Data)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("decode command %d: %w", i, err)
		}
		if cmd == nil {
			return nil, nil, nil, fmt.Errorf("decode command %d: %w: codec returned nil", i, ErrMalformed)
		}
		cmds[i] = cmd
		ids[i] = e.ID
		times[i] = e.Time
	}
	return cmds, ids, times, nil
}

// writeAtomic writes data via a temp file in the target directory and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".rewind-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
