package docker

import (
	"bytes"
	"io"
	"sync"
)

// lineWriter forwards complete lines to a sink and fires onFirst the first
// time any bytes arrive, even when they do not yet form a full line.
type lineWriter struct {
	sink    LineSink
	onFirst func()
	once    sync.Once
	pending []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if len(p) > 0 && w.onFirst != nil {
		w.once.Do(w.onFirst)
	}
	w.pending = append(w.pending, p...)
	for {
		idx := bytes.IndexByte(w.pending, '\n')
		if idx < 0 {
			break
		}
		w.emit(w.pending[:idx])
		w.pending = w.pending[idx+1:]
	}
	return len(p), nil
}

// flush emits whatever partial line is left once the stream is closed.
func (w *lineWriter) flush() {
	if len(w.pending) > 0 {
		w.emit(w.pending)
		w.pending = nil
	}
}

func (w *lineWriter) emit(line []byte) {
	line = bytes.TrimRight(line, " \t\r")
	if len(line) == 0 || w.sink == nil {
		return
	}
	w.sink(string(line))
}

// pump copies r into a lineWriter until EOF and then flushes it.
func pump(r io.Reader, w *lineWriter) {
	_, _ = io.Copy(w, r)
	w.flush()
}

// streamOutput pumps both process streams into sink and returns a WaitGroup
// that completes once both reach EOF.
func streamOutput(stdout, stderr io.Reader, sink LineSink, onFirst func()) *sync.WaitGroup {
	var once sync.Once
	first := func() {
		if onFirst != nil {
			once.Do(onFirst)
		}
	}
	var wg sync.WaitGroup
	for _, r := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func(r io.Reader) {
			defer wg.Done()
			pump(r, &lineWriter{sink: sink, onFirst: first})
		}(r)
	}
	return &wg
}
