package production

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statematch"
)

// TraceWriter appends every applied transition to w as a YAML document.
type TraceWriter struct {
	mu  sync.Mutex
	enc *yaml.Encoder
	err error
}

// NewTraceWriter creates a TraceWriter over w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{enc: yaml.NewEncoder(w)}
}

// TransitionApplied appends rec as one YAML document.
func (t *TraceWriter) TransitionApplied(_ context.Context, rec statematch.TransitionRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if err := t.enc.Encode(rec); err != nil {
		t.err = fmt.Errorf("trace: encode: %w", err)
	}
}

// TransitionSuppressed is a no-op.
func (t *TraceWriter) TransitionSuppressed(context.Context, string) {}

// PhaseFailed is a no-op.
func (t *TraceWriter) PhaseFailed(context.Context, statematch.Phase, string, error) {}

// Err returns the first write error. Records after it are discarded.
func (t *TraceWriter) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Close flushes the encoder. It does not close the underlying writer.
func (t *TraceWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	if err := t.enc.Close(); err != nil {
		t.err = fmt.Errorf("trace: close: %w", err)
	}
	return t.err
}

// ReadTrace decodes a journal written by TraceWriter.
func ReadTrace(r io.Reader) ([]statematch.TransitionRecord, error) {
	dec := yaml.NewDecoder(r)
	var out []statematch.TransitionRecord
	for {
		var rec statematch.TransitionRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("trace: decode record %d: %w", len(out), err)
		}
		out = append(out, rec)
	}
}
