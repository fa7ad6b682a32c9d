package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

const (
	queueLength   = 1024
	flushInterval = time.Second
)

// AsyncFileWriter moves file I/O off the request path. Lines are queued and
// written by one goroutine; a full queue drops lines instead of blocking.
type AsyncFileWriter struct {
	file    *os.File
	buf     *bufio.Writer
	lines   chan []byte
	stop    chan struct{}
	stopped sync.WaitGroup
	close   sync.Once
	dropped atomic.Uint64
}

func NewAsyncFileWriter(path string, bufferSize int) (*AsyncFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	w := &AsyncFileWriter{
		file:  file,
		buf:   bufio.NewWriterSize(file, bufferSize),
		lines: make(chan []byte, queueLength),
		stop:  make(chan struct{}),
	}
	w.stopped.Add(1)
	go w.run()
	return w, nil
}

func (w *AsyncFileWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)
	select {
	case w.lines <- line:
	default:
		w.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped returns how many lines were discarded because the queue was full.
func (w *AsyncFileWriter) Dropped() uint64 {
	return w.dropped.Load()
}

func (w *AsyncFileWriter) run() {
	defer w.stopped.Done()
	tick := time.NewTicker(flushInterval)
	defer tick.Stop()

	for {
		select {
		case line := <-w.lines:
			w.write(line)
		case <-tick.C:
			_ = w.buf.Flush()
		case <-w.stop:
			for {
				select {
				case line := <-w.lines:
					w.write(line)
				default:
					_ = w.buf.Flush()
					return
				}
			}
		}
	}
}

func (w *AsyncFileWriter) write(line []byte) {
	if _, err := w.buf.Write(line); err != nil {
		fmt.Fprintln(os.Stderr, "imageguard: failed to write log line:", err)
	}
}

// Close drains queued lines, flushes and closes the file. Later calls are
// no-ops.
func (w *AsyncFileWriter) Close() {
	w.close.Do(func() {
		close(w.stop)
		w.stopped.Wait()
		_ = w.file.Close()
	})
}
