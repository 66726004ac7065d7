// Package dupe implements the duplicate-conflict log: an append-only
// record of every merge decision that resolved a naming collision,
// and a column-aligned report writer.
package dupe

import (
	"fmt"
	"io"
	"strings"
)

// Op is the kind of resolution applied to a conflict.
type Op int

const (
	// Merge means the incoming resource was combined with the
	// existing one rather than replacing it (text lumps are
	// concatenated). Resources found equal are kept silently and
	// produce no record at all.
	Merge Op = iota
	// Overwrite means the incoming resource replaced the existing
	// one because they differed.
	Overwrite
)

func (o Op) label(kind string) string {
	switch o {
	case Merge:
		return "merge " + kind
	case Overwrite:
		return "overwrite " + kind
	default:
		return "? " + kind
	}
}

// Record is one resolved conflict: an operation kind, a typed
// resource label, and the two fully qualified resource names
// involved ("<archive-basename>:<lump-name>").
type Record struct {
	Op   Op
	Kind string
	A, B string
}

// Label renders the textual operation label, e.g. "overwrite texture".
func (r Record) Label() string { return r.Op.label(r.Kind) }

// Log is an append-only ordered list of Records.
type Log struct {
	records []Record
}

// NewLog returns an empty duplicate log.
func NewLog() *Log { return &Log{} }

// Add appends a record.
func (l *Log) Add(r Record) { l.records = append(l.records, r) }

// AddAll appends every record in rs, in order.
func (l *Log) AddAll(rs []Record) {
	l.records = append(l.records, rs...)
}

// Len returns the number of recorded conflicts.
func (l *Log) Len() int { return len(l.records) }

// Records returns the recorded conflicts in order.
func (l *Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// WriteTo renders the log as a human-readable report: three columns,
// each padded to the maximum width seen across the whole list, with
// the operation label in the first column and the two fully
// qualified resource names in the others.
func (l *Log) WriteTo(w io.Writer) (int64, error) {
	var labelW, aW, bW int
	for _, r := range l.records {
		labelW = max(labelW, len(r.Label()))
		aW = max(aW, len(r.A))
		bW = max(bW, len(r.B))
	}

	var sb strings.Builder
	for _, r := range l.records {
		fmt.Fprintf(&sb, "%-*s  %-*s  %-*s\n", labelW, r.Label(), aW, r.A, bW, r.B)
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
