package journal

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Info summarizes a journal file without decoding any command.
type Info struct {
	Version  int
	Cursor   int
	Saved    int // -1 when unset
	Limit    int
	Entries  int  // total stored commands, all branches for a history
	History  bool // whether the file is a history journal
	Branches int  // 0 for a record journal
}

// Peek reads journal metadata from path. It needs no codec, so it works
// on journals whose command types this process cannot decode.
func Peek(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, err
	}
	if !gjson.ValidBytes(data) {
		return Info{}, fmt.Errorf("%s: %w", path, ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	info := Info{
		Version: int(root.Get("version").Int()),
		Cursor:  int(root.Get("cursor").Int()),
		Saved:   int(root.Get("saved").Int()),
		Limit:   int(root.Get("limit").Int()),
	}
	if branches := root.Get("branches"); branches.Exists() {
		info.History = true
		info.Branches = int(branches.Get("#").Int())
		branches.ForEach(func(_, br gjson.Result) bool {
			info.Entries += int(br.Get("entries.#").Int())
			return true
		})
	} else {
		info.Entries = int(root.Get("entries.#").Int())
	}
	return info, nil
}

// MarkSaved rewrites just the journal's saved position, leaving every
// other byte of the file as Save wrote it. A history journal's
// suspended saved position is cleared, since the mark names a position
// on the current branch.
func MarkSaved(path string, saved int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%s: %w", path, ErrMalformed)
	}
	out, err := sjson.SetBytes(data, "saved", saved)
	if err != nil {
		return err
	}
	if gjson.GetBytes(out, "saved_at").Exists() {
		if out, err = sjson.SetBytes(out, "saved_at.branch", -1); err != nil {
			return err
		}
	}
	return writeAtomic(path, out)
}
