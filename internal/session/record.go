// Package session reads and writes recorded landmark sessions as JSONL:
// one frame record per line. Recordings feed the pipeline via Replay and
// can be produced synthetically for testing.
package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/courtside-data/stroke.report/internal/pose"
)

// FrameRecord is one line of a session recording.
type FrameRecord struct {
	TimestampMs int64           `json:"timestamp_ms"`
	Landmarks   []pose.Landmark `json:"landmarks"`
}

// Joints converts the record's landmark list to the fixed-size joint
// array. Records with the wrong landmark count are rejected.
func (r *FrameRecord) Joints() (*pose.Joints, error) {
	if len(r.Landmarks) != pose.NumLandmarks {
		return nil, fmt.Errorf("frame at %dms has %d landmarks, want %d",
			r.TimestampMs, len(r.Landmarks), pose.NumLandmarks)
	}
	var j pose.Joints
	copy(j[:], r.Landmarks)
	return &j, nil
}

// Writer appends frame records to a JSONL stream.
type Writer struct {
	enc *json.Encoder
}

// NewWriter wraps w for record output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Write appends one record.
func (w *Writer) Write(rec *FrameRecord) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("write frame record: %w", err)
	}
	return nil
}

// maxRecordBytes bounds a single JSONL line; 33 landmarks fit easily.
const maxRecordBytes = 1 << 20

// Reader iterates frame records from a JSONL stream.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader wraps r for record input.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
	return &Reader{scanner: sc}
}

// Next returns the next record, or io.EOF at the end of the stream. A
// malformed line is returned as an error with its line number; the
// caller decides whether to skip or abort.
func (r *Reader) Next() (*FrameRecord, error) {
	for r.scanner.Scan() {
		r.line++
		raw := r.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec FrameRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return &rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session stream: %w", err)
	}
	return nil, io.EOF
}
