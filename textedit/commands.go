package textedit

import (
	"fmt"
	"unicode/utf8"

	"github.com/dshills/rewind"
)

// Insert adds Text at rune offset At.
type Insert struct {
	At   int    `json:"at"`
	Text string `json:"text"`
}

// Apply inserts the text. A failed bounds check leaves the document
// untouched.
func (c *Insert) Apply(d *Document) error {
	return d.insert(c.At, []rune(c.Text))
}

// Undo removes the inserted text again.
func (c *Insert) Undo(d *Document) error {
	_, err := d.remove(c.At, utf8.RuneCountInString(c.Text))
	return err
}

func (c *Insert) String() string {
	return fmt.Sprintf("insert %q at %d", c.Text, c.At)
}

// Merge coalesces a typing run: a single-rune Insert continuing this one
// extends it, a single-rune Delete taking back the run's last rune
// shrinks it, and a Delete removing the whole run annuls the entry.
func (c *Insert) Merge(next rewind.Command[*Document]) rewind.MergeResult {
	runes := []rune(c.Text)
	switch n := next.(type) {
	case *Insert:
		if utf8.RuneCountInString(n.Text) == 1 && n.At == c.At+len(runes) {
			c.Text += n.Text
			return rewind.MergeYes
		}
	case *Delete:
		if n.At == c.At && n.Count == len(runes) {
			return rewind.MergeAnnul
		}
		if n.Count == 1 && len(runes) > 1 && n.At == c.At+len(runes)-1 {
			c.Text = string(runes[:len(runes)-1])
			return rewind.MergeYes
		}
	}
	return rewind.MergeNo
}

// Delete removes Count runes at rune offset At. The removed text is
// captured on apply so the inverse exists, and kept in an exported
// field so a journaled delete stays reversible.
type Delete struct {
	At      int    `json:"at"`
	Count   int    `json:"count"`
	Deleted string `json:"deleted,omitempty"`
}

// Apply removes the range and captures it.
func (c *Delete) Apply(d *Document) error {
	removed, err := d.remove(c.At, c.Count)
	if err != nil {
		return err
	}
	c.Deleted = string(removed)
	return nil
}

// Undo restores the removed text.
func (c *Delete) Undo(d *Document) error {
	return d.insert(c.At, []rune(c.Deleted))
}

func (c *Delete) String() string {
	if c.Deleted != "" {
		return fmt.Sprintf("delete %q at %d", c.Deleted, c.At)
	}
	return fmt.Sprintf("delete %d at %d", c.Count, c.At)
}

// Replace substitutes Count runes at rune offset At with Text. The
// replaced text is captured on apply, like Delete.
type Replace struct {
	At       int    `json:"at"`
	Count    int    `json:"count"`
	Text     string `json:"text"`
	Replaced string `json:"replaced,omitempty"`
}

// Apply swaps the range for the new text. The bounds check runs before
// any mutation; after it passes neither step can fail.
func (c *Replace) Apply(d *Document) error {
	removed, err := d.remove(c.At, c.Count)
	if err != nil {
		return err
	}
	c.Replaced = string(removed)
	return d.insert(c.At, []rune(c.Text))
}

// Undo swaps the replacement back out.
func (c *Replace) Undo(d *Document) error {
	if _, err := d.remove(c.At, utf8.RuneCountInString(c.Text)); err != nil {
		return err
	}
	return d.insert(c.At, []rune(c.Replaced))
}

func (c *Replace) String() string {
	return fmt.Sprintf("replace %d at %d with %q", c.Count, c.At, c.Text)
}
