// Package errlog collects recoverable documentation errors for one build.
//
// A Log is created per build and passed explicitly to the components that
// report into it. Reset must be called at the start of every build when a
// Log is reused, as the watch command does.
package errlog

import (
	"fmt"
	"sync"
)

// Record is one recoverable problem tied to a documented entity.
type Record struct {
	Entity   string
	Message  string
	Filename string
	Line     int
}

// String formats the record as "file:line: entity: message".
func (r Record) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", r.Filename, r.Line, r.Entity, r.Message)
}

// Ref identifies the entity an error belongs to.
type Ref interface {
	String() string
	Filename() string
	Line() int
}

// Log is an append-only, deduplicated list of Records.
type Log struct {
	mu      sync.Mutex
	records []Record
	seen    map[Record]struct{}
}

// New returns an empty Log.
func New() *Log {
	return &Log{seen: make(map[Record]struct{})}
}

// Reset discards every record.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
	l.seen = make(map[Record]struct{})
}

// Append records message against ref, using ref's file and line.
func (l *Log) Append(ref Ref, message string) {
	l.Add(Record{
		Entity:   ref.String(),
		Message:  message,
		Filename: ref.Filename(),
		Line:     ref.Line(),
	})
}

// Add records r unless an identical record is already present.
func (l *Log) Add(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen == nil {
		l.seen = make(map[Record]struct{})
	}
	if _, dup := l.seen[r]; dup {
		return
	}
	l.seen[r] = struct{}{}
	l.records = append(l.records, r)
}

// All returns the distinct records in first-occurrence order.
func (l *Log) All() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of distinct records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
