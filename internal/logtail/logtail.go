package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Buffer keeps the most recent lines of streamed text. It is safe for
// concurrent use.
type Buffer struct {
	mu    sync.Mutex
	ring  []string
	next  int
	count int
	total uint64
}

// NewBuffer returns a Buffer retaining at most limit lines.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = 1
	}
	return &Buffer{ring: make([]string, limit)}
}

// Append splits text on newlines and stores every non-blank line with its
// trailing whitespace removed. It returns the lines that were stored.
func (b *Buffer) Append(text string) []string {
	lines := SplitLines(text)
	if len(lines) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range lines {
		b.ring[b.next] = line
		b.next = (b.next + 1) % len(b.ring)
		if b.count < len(b.ring) {
			b.count++
		}
		b.total++
	}
	return lines
}

// Lines returns the retained lines, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, b.count)
	start := (b.next - b.count + len(b.ring)) % len(b.ring)
	for i := 0; i < b.count; i++ {
		out[i] = b.ring[(start+i)%len(b.ring)]
	}
	return out
}

// Total reports how many lines were ever appended, including evicted ones.
func (b *Buffer) Total() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Reset drops all retained lines.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.ring {
		b.ring[i] = ""
	}
	b.next, b.count, b.total = 0, 0, 0
}

// SplitLines breaks a chunk of process output into trimmed, non-empty lines.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, " \t\r")
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	buf := NewBuffer(maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		buf.Append(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return buf.Lines(), nil
}
