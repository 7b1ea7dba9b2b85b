package holog

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// This file implements the process-wide (per-Interpreter) stream handle
// table backing the I/O built-ins open_in/2, open_out/2, output/2,
// input_line/2, flush/1, close_in/1, close_out/1, with stdin/stdout/stderr pre-opened at handles
// 0/1/2 the way a Unix process fixes its first three file descriptors.
// Uses a driver handle-table pattern (allocate an opaque id, look it up on
// every subsequent call, tear down
// on close) rather than threading *os.File directly through terms — a
// CData leaf here carries the integer handle, not the file, keeping Term
// equality/hashing pure.

const (
	StreamStdin  = 0
	StreamStdout = 1
	StreamStderr = 2
)

// Stream is one entry in the table: a reader, a writer, or both, plus
// whatever needs closing.
type Stream struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer
}

// StreamTable is the handle table. It is guarded by a mutex because
// built-ins may be invoked from host goroutines embedding the
// interpreter even though the solver itself runs single-threaded: the
// solver is sequential, but nothing stops an embedder from holding a
// stream handle across solver calls on
// different goroutines).
type StreamTable struct {
	mu      sync.Mutex
	streams map[int]*Stream
	next    int
}

// NewStreamTable creates a table with stdin/stdout/stderr pre-registered.
func NewStreamTable() *StreamTable {
	t := &StreamTable{streams: make(map[int]*Stream), next: 3}
	t.streams[StreamStdin] = &Stream{reader: bufio.NewReader(os.Stdin)}
	t.streams[StreamStdout] = &Stream{writer: os.Stdout}
	t.streams[StreamStderr] = &Stream{writer: os.Stderr}
	return t
}

// OpenIn opens path for reading and returns its handle.
func (t *StreamTable) OpenIn(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, NewRegularError("open_in: %v", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.next
	t.next++
	t.streams[h] = &Stream{reader: bufio.NewReader(f), closer: f}
	return h, nil
}

// OpenOut opens path for writing (truncating) and returns its handle.
func (t *StreamTable) OpenOut(path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, NewRegularError("open_out: %v", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.next
	t.next++
	t.streams[h] = &Stream{writer: f, closer: f}
	return h, nil
}

// Write writes s to the stream at handle h.
func (t *StreamTable) Write(h int, s string) error {
	t.mu.Lock()
	st, ok := t.streams[h]
	t.mu.Unlock()
	if !ok || st.writer == nil {
		return NewRegularError("stream %d is not open for output", h)
	}
	_, err := io.WriteString(st.writer, s)
	if err != nil {
		return NewRegularError("output: %v", err)
	}
	return nil
}

// ReadLine reads one line (without the trailing newline) from the stream
// at handle h. ok is false at end of stream.
func (t *StreamTable) ReadLine(h int) (line string, ok bool, err error) {
	t.mu.Lock()
	st, present := t.streams[h]
	t.mu.Unlock()
	if !present || st.reader == nil {
		return "", false, NewRegularError("stream %d is not open for input", h)
	}
	l, rerr := st.reader.ReadString('\n')
	if rerr != nil && l == "" {
		if rerr == io.EOF {
			return "", false, nil
		}
		return "", false, NewRegularError("read: %v", rerr)
	}
	for len(l) > 0 && (l[len(l)-1] == '\n' || l[len(l)-1] == '\r') {
		l = l[:len(l)-1]
	}
	return l, true, nil
}

// Flush flushes a stream's writer, if it supports flushing.
func (t *StreamTable) Flush(h int) error {
	t.mu.Lock()
	st, ok := t.streams[h]
	t.mu.Unlock()
	if !ok {
		return NewRegularError("stream %d is not open", h)
	}
	if f, ok := st.writer.(interface{ Sync() error }); ok {
		return f.Sync()
	}
	return nil
}

// Close closes a stream handle (input or output) and removes it from the
// table. Closing 0/1/2 is a no-op beyond table removal, matching the
// teacher's guard against closing a host's own stdio handles out from
// under it.
func (t *StreamTable) Close(h int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.streams[h]
	if !ok {
		return NewRegularError("stream %d is not open", h)
	}
	delete(t.streams, h)
	if h <= StreamStderr || st.closer == nil {
		return nil
	}
	return st.closer.Close()
}
