package journal

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op classifies a journal file change.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
)

// Has reports whether o contains op.
func (o Op) Has(op Op) bool {
	return o&op != 0
}

// String returns a string representation of the operation set.
func (o Op) String() string {
	names := ""
	add := func(s string) {
		if names != "" {
			names += "|"
		}
		names += s
	}
	if o.Has(OpCreate) {
		add("create")
	}
	if o.Has(OpWrite) {
		add("write")
	}
	if o.Has(OpRemove) {
		add("remove")
	}
	if o.Has(OpRename) {
		add("rename")
	}
	if names == "" {
		return "none"
	}
	return names
}

// Event reports an external change to a watched journal file.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}

// Watcher reports changes made to one journal file by other processes.
// It watches the file's directory, so an atomic replace (the way Save
// writes) is seen as a create of the journal path.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan Event
	errors  chan error

	closeCh chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Watch starts watching the journal file at path. The file itself need
// not exist yet.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fsw,
		path:    abs,
		events:  make(chan Event, 16),
		errors:  make(chan error, 16),
		closeCh: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the watched journal path.
func (w *Watcher) Path() string {
	return w.path
}

// Events returns the event channel.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}
	w.sendEvent(Event{Path: w.path, Op: op, Timestamp: time.Now()})
}

// sendEvent delivers without blocking; a full channel drops the event,
// since a journal event is a hint to re-read the file, not a log.
func (w *Watcher) sendEvent(ev Event) {
	select {
	case w.events <- ev:
	default:
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
