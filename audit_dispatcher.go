package sessauth

import (
	"log"
	"sync"
	"sync/atomic"
)

// auditDispatcher decouples session operations from audit sinks. Events are
// queued on a buffered channel and delivered by a single goroutine so a slow
// sink can never block Login or CanAccessPath.
type auditDispatcher struct {
	sink       AuditSink
	events     chan AuditEvent
	dropIfFull bool

	dropped atomic.Uint64

	closeOnce sync.Once
	done      chan struct{}
}

func newAuditDispatcher(sink AuditSink, bufferSize int, dropIfFull bool) *auditDispatcher {
	d := &auditDispatcher{
		sink:       sink,
		events:     make(chan AuditEvent, bufferSize),
		dropIfFull: dropIfFull,
		done:       make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *auditDispatcher) run() {
	defer close(d.done)
	for event := range d.events {
		d.sink.Emit(event)
	}
}

// dispatch queues an event. With dropIfFull the event is counted and dropped
// when the buffer is full; otherwise the caller blocks until space frees up.
func (d *auditDispatcher) dispatch(event AuditEvent) {
	if d.dropIfFull {
		select {
		case d.events <- event:
		default:
			if d.dropped.Add(1)%1000 == 1 {
				log.Print("sessauth: audit buffer full, dropping events")
			}
		}
		return
	}
	d.events <- event
}

// droppedCount reports how many events were dropped since startup.
func (d *auditDispatcher) droppedCount() uint64 {
	return d.dropped.Load()
}

// close stops accepting events and drains the queue before returning.
func (d *auditDispatcher) close() {
	d.closeOnce.Do(func() {
		close(d.events)
		<-d.done
	})
}
