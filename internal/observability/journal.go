package observability

import (
	"encoding/json"
	"io"
	"sync"
)

// Journal writes events as JSON lines and retains them for inspection.
type Journal struct {
	mu      sync.Mutex
	entries []Event
	enc     *json.Encoder
	err     error
}

// NewJournal writes to w; a nil writer only retains entries.
func NewJournal(w io.Writer) *Journal {
	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}
	return &Journal{enc: enc}
}

// Record implements Recorder.
func (j *Journal) Record(e Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	if j.enc != nil && j.err == nil {
		j.err = j.enc.Encode(e)
	}
}

// Entries returns a copy of every recorded event.
func (j *Journal) Entries() []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Event, len(j.entries))
	copy(out, j.entries)
	return out
}

// Err reports the first write failure. Writing stops after it.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
