// Package script binds a text document and its branching history to a
// Lua state, for driving edit sessions from scripts.
//
// A script sees one global table, doc, with:
//   - doc.text(), doc.len(), doc.cursor() - read the document
//   - doc.insert(at, text), doc.delete(at, count),
//     doc.replace(at, count, text) - push commands
//   - doc.undo(), doc.redo() - step; return false at a boundary
//   - doc.go_to(index), doc.jump(branch, index) - move anywhere
//   - doc.save(), doc.is_saved() - the saved marker
//   - doc.branches(), doc.entries() - read the history tree
//   - doc.checkpoint(), doc.commit(), doc.cancel() - cancellable runs
//
// Failed operations raise Lua errors; boundary undo/redo do not.
package script
