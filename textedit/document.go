package textedit

import "errors"

// Errors returned by document operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Document is a text buffer addressed in runes, with a cursor marking
// where the latest edit ended. It is the target type for the commands
// in this package. Like any engine target it is single-owner: the
// record or history operating on it does so exclusively.
type Document struct {
	text   []rune
	cursor int
}

// NewDocument creates a document holding text, cursor at the end.
func NewDocument(text string) *Document {
	runes := []rune(text)
	return &Document{text: runes, cursor: len(runes)}
}

// Text returns the document content.
func (d *Document) Text() string {
	return string(d.text)
}

// String returns the document content.
func (d *Document) String() string {
	return string(d.text)
}

// Len returns the content length in runes.
func (d *Document) Len() int {
	return len(d.text)
}

// Cursor returns the cursor position as a rune offset.
func (d *Document) Cursor() int {
	return d.cursor
}

// SetCursor moves the cursor, clamped to the document bounds.
func (d *Document) SetCursor(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.text) {
		offset = len(d.text)
	}
	d.cursor = offset
}

// Slice returns count runes starting at offset.
func (d *Document) Slice(offset, count int) (string, error) {
	if offset < 0 || count < 0 || offset+count > len(d.text) {
		return "", ErrRangeInvalid
	}
	return string(d.text[offset : offset+count]), nil
}

// insert places runes at offset and parks the cursor after them.
func (d *Document) insert(offset int, runes []rune) error {
	if offset < 0 || offset > len(d.text) {
		return ErrOffsetOutOfRange
	}
	out := make([]rune, 0, len(d.text)+len(runes))
	out = append(out, d.text[:offset]...)
	out = append(out, runes...)
	out = append(out, d.text[offset:]...)
	d.text = out
	d.cursor = offset + len(runes)
	return nil
}

// remove deletes count runes at offset and returns them, parking the
// cursor at the cut.
func (d *Document) remove(offset, count int) ([]rune, error) {
	if offset < 0 || count < 0 || offset+count > len(d.text) {
		return nil, ErrRangeInvalid
	}
	removed := make([]rune, count)
	copy(removed, d.text[offset:offset+count])
	d.text = append(d.text[:offset], d.text[offset+count:]...)
	d.cursor = offset
	return removed, nil
}
