// Package journal persists rewind timelines as JSON files on disk.
//
// A journal stores a record or history snapshot with every command
// encoded through a caller-supplied Codec, so command types stay under
// the caller's control. Writes go through a temp file and rename; a
// crash never leaves a half-written journal behind.
//
// The package provides:
//
//   - Save/Load and SaveHistory/LoadHistory: full snapshot round trips
//   - Replay/ReplayHistory: rebuild target and timeline from the
//     journal alone
//   - TypeCodec: a name-registry codec for JSON-marshalable commands
//   - Peek: cheap journal metadata without decoding any command
//   - MarkSaved: rewrite just the saved position in place
//   - Watcher: change notifications for a journal modified externally
//
// Load and LoadHistory rebuild the timeline around a caller-supplied
// target whose state must already match the journal's cursor; the
// Replay variants bring a fresh target to that state first by applying
// the journaled commands.
package journal
