package observability

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

// ExpvarRecorder publishes per-hook event counts via expvar for deployments
// that scrape /debug/vars instead of Prometheus.
type ExpvarRecorder struct {
	name   string
	mu     sync.Mutex
	counts map[string]int64
	last   time.Time
}

// ExpvarSnapshot is a read-only view of the recorded counts.
type ExpvarSnapshot struct {
	Events     map[string]int64 `json:"events_total"`
	LastEvent  time.Time        `json:"last_event,omitempty"`
	RecordedAt time.Time        `json:"recorded_at"`
}

// NewExpvarRecorder publishes the recorder under name. When name is empty a
// unique name is generated. expvar names are process-global, so publishing the
// same name twice panics.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("decotree_hook_events_%d", id)
	}
	rec := &ExpvarRecorder{name: name, counts: make(map[string]int64)}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name.
func (r *ExpvarRecorder) Name() string { return r.name }

// Record implements Recorder.
func (r *ExpvarRecorder) Record(e Event) {
	r.mu.Lock()
	r.counts[e.Name()]++
	r.last = e.At
	r.mu.Unlock()
}

// Snapshot returns a copy of the aggregated counts.
func (r *ExpvarRecorder) Snapshot() ExpvarSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64, len(r.counts))
	for k, v := range r.counts {
		counts[k] = v
	}
	return ExpvarSnapshot{Events: counts, LastEvent: r.last, RecordedAt: time.Now().UTC()}
}
