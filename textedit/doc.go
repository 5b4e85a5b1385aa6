// Package textedit provides a small rune-addressed text document and
// undoable commands over it. It is the concrete command set used by the
// bundled tools, and a worked example of writing commands for the
// rewind engine.
//
// The package provides:
//
//   - Document: rune-slice text with a cursor marking the latest edit
//   - Insert, Delete, Replace: Command[*Document] implementations with
//     exact inverses
//   - Typing-run coalescing: consecutive single-rune inserts merge into
//     one log entry, and deleting a run right back annuls it
//
// Basic usage:
//
//	doc := textedit.NewDocument("")
//	rec := rewind.NewRecord(doc)
//
//	rec.Push(&textedit.Insert{At: 0, Text: "hello"})
//	rec.Push(&textedit.Replace{At: 0, Count: 5, Text: "world"})
//	rec.Undo() // doc.Text() == "hello"
//
// Commands capture whatever they need for their inverse when they
// apply: Delete keeps the removed text, Replace the replaced text. The
// captured fields are exported and JSON-tagged so a journaled command
// stays reversible after a round trip through disk.
package textedit
