// Package netlog writes the raw incoming wire stream to rotating log
// files. Grounded on the teacher's internal/buffer.Unbounded drop-oldest
// queue and the original Rust client's RawLogger/run_log_writer: a
// background writer goroutine owns the file handle exclusively (spec §5
// "the raw-log file is owned by the log writer task alone"), and overflow
// drops the oldest buffered line with a counted warning rather than
// blocking the network path (spec §7 "never blocks the network path").
package netlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/drake/vellum/internal/buffer"
)

// Options configures the rotation policy.
type Options struct {
	Dir              string
	MaxLinesPerFile  int
	Timestamps       bool // prefix each line with a timestamp
	QueueCapacity    int  // bounded channel depth before drop-oldest kicks in
}

// DefaultOptions returns sane defaults grounded on the original client's
// rotation policy (10,000 lines/file).
func DefaultOptions(dir string) Options {
	return Options{Dir: dir, MaxLinesPerFile: 10000, Timestamps: true, QueueCapacity: 2000}
}

// Logger buffers lines onto internal/buffer's unbounded drop-oldest queue
// and flushes them to rotating files from a single background goroutine.
type Logger struct {
	opts      Options
	sessionID string
	linesIn   chan<- string
	linesOut  <-chan string
	done      chan struct{}
	dropped   atomic.Uint64
}

// Open creates the log directory if needed and starts the writer goroutine.
// Each Open mints a fresh session-correlation id (written as a header line
// into every file this Logger rotates into) so a run's log files can be
// grouped even after they've been split across several rotations.
func Open(opts Options) (*Logger, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("netlog: creating log dir: %w", err)
	}
	l := &Logger{
		opts:      opts,
		sessionID: uuid.NewString(),
		done:      make(chan struct{}),
	}
	initialCap := opts.QueueCapacity/4 + 1
	l.linesIn, l.linesOut = buffer.Unbounded[string](initialCap, opts.QueueCapacity, func(string) {
		l.dropped.Add(1)
	})
	go l.run()
	return l, nil
}

// SessionID returns this Logger's correlation id.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Write enqueues a line for logging. Never blocks: a full input stage
// drops the line immediately, and the buffer's own hardLimit safety valve
// drops the oldest queued line if the writer goroutine falls behind
// (spec §7 "Failure to write raw log rotates or drops; increments a
// dropped-line counter; never blocks the network path").
func (l *Logger) Write(line string) {
	select {
	case l.linesIn <- line:
	default:
		l.dropped.Add(1)
	}
}

// Dropped returns the number of lines dropped, whether at the input stage
// or by the buffer's hardLimit valve.
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// Close stops the writer goroutine after flushing anything queued.
func (l *Logger) Close() {
	close(l.linesIn)
	<-l.done
}

func (l *Logger) run() {
	defer close(l.done)

	var f *os.File
	var linesInFile int

	rotate := func() {
		if f != nil {
			f.Close()
		}
		name := filepath.Join(l.opts.Dir, fmt.Sprintf("%d.xml", time.Now().UnixNano()))
		nf, err := os.Create(name)
		if err != nil {
			f = nil
			return
		}
		f = nf
		linesInFile = 0
		fmt.Fprintf(f, "# session %s\n", l.sessionID)
	}
	rotate()

	for line := range l.linesOut {
		if f == nil {
			rotate()
			if f == nil {
				continue
			}
		}
		if l.opts.Timestamps {
			line = time.Now().Format(time.RFC3339Nano) + " " + line
		}
		if _, err := f.WriteString(line + "\n"); err != nil {
			continue
		}
		linesInFile++
		if l.opts.MaxLinesPerFile > 0 && linesInFile >= l.opts.MaxLinesPerFile {
			rotate()
		}
	}
	if f != nil {
		f.Close()
	}
}
