package event

import "sync/atomic"

// Sink consumes the engine's audit records. Publish is called under the
// market lock, after all validation has passed, so implementations see
// only records from committed operations.
type Sink interface {
	Publish(Record)
}

// MemorySink collects records in order. Used by tests; journal replay
// mutes records with a GatedSink instead.
type MemorySink struct {
	Records []Record
}

func (s *MemorySink) Publish(r Record) {
	s.Records = append(s.Records, r)
}

// OfType returns the collected records matching t, in emission order.
func (s *MemorySink) OfType(t Type) []Record {
	var out []Record
	for _, r := range s.Records {
		if r.Type() == t {
			out = append(out, r)
		}
	}
	return out
}

// ChanSink forwards records to a channel with a non-blocking send.
// Downstream consumers (the outbound publisher) can rebuild from the
// operation journal if they fall behind, so drops are counted, not fatal.
type ChanSink struct {
	C       chan Record
	dropped atomic.Uint64
}

func NewChanSink(capacity int) *ChanSink {
	return &ChanSink{C: make(chan Record, capacity)}
}

func (s *ChanSink) Publish(r Record) {
	select {
	case s.C <- r:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns the number of records discarded on a full channel.
func (s *ChanSink) Dropped() uint64 {
	return s.dropped.Load()
}

// GatedSink wraps another sink and discards records until enabled.
// The shell keeps the gate closed while replaying the operation journal
// so recovery does not republish historical records.
type GatedSink struct {
	inner   Sink
	enabled atomic.Bool
}

func NewGatedSink(inner Sink) *GatedSink {
	return &GatedSink{inner: inner}
}

func (s *GatedSink) Enable() {
	s.enabled.Store(true)
}

func (s *GatedSink) Publish(r Record) {
	if s.enabled.Load() {
		s.inner.Publish(r)
	}
}
