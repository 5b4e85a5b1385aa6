package textedit

import (
	"errors"
	"testing"
)

func TestNewDocument(t *testing.T) {
	d := NewDocument("hello")
	if d.Text() != "hello" || d.Len() != 5 || d.Cursor() != 5 {
		t.Errorf("text/len/cursor = %q/%d/%d, want hello/5/5", d.Text(), d.Len(), d.Cursor())
	}
	empty := NewDocument("")
	if empty.Len() != 0 || empty.Cursor() != 0 {
		t.Errorf("empty len/cursor = %d/%d, want 0/0", empty.Len(), empty.Cursor())
	}
}

func TestSetCursorClamps(t *testing.T) {
	d := NewDocument("abc")
	tests := []struct {
		offset int
		want   int
	}{
		{-5, 0},
		{0, 0},
		{2, 2},
		{3, 3},
		{99, 3},
	}
	for _, tt := range tests {
		d.SetCursor(tt.offset)
		if d.Cursor() != tt.want {
			t.Errorf("SetCursor(%d) cursor = %d, want %d", tt.offset, d.Cursor(), tt.want)
		}
	}
}

func TestSlice(t *testing.T) {
	d := NewDocument("héllo")
	got, err := d.Slice(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "él" {
		t.Errorf("Slice(1, 2) = %q, want %q", got, "él")
	}

	if _, err := d.Slice(4, 3); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("Slice past end = %v, want ErrRangeInvalid", err)
	}
	if _, err := d.Slice(-1, 1); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("Slice(-1, 1) = %v, want ErrRangeInvalid", err)
	}
}
