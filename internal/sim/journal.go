package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"forgeengine/internal/physics"

	"golang.org/x/time/rate"
)

// FlushInterval is how often the async writer goroutine drains the
// journal to its sink file.
const FlushInterval = 100 * time.Millisecond

// JournalBufferSize bounds the circular buffer of recorded events; once
// full, the oldest entry is overwritten rather than blocking the tick.
const JournalBufferSize = 1024

// MaxEventsPerSec rate-limits how many entries Emit accepts per second,
// so a pathological script that fails every frame cannot make the
// journal itself the tick's bottleneck.
const MaxEventsPerSec = 2000

// EventKind classifies one recorded journal entry.
type EventKind uint8

const (
	EventScriptFailure EventKind = iota
	EventCorrectionWarning
	EventResourceExhausted
)

func (k EventKind) String() string {
	switch k {
	case EventScriptFailure:
		return "script_failure"
	case EventCorrectionWarning:
		return "correction_warning"
	case EventResourceExhausted:
		return "resource_exhausted"
	default:
		return "unknown"
	}
}

// Event is one journal entry: a frame-stamped, sequence-numbered record
// of a non-fatal condition the tick orchestrator absorbed rather than
// propagated.
type Event struct {
	Sequence uint64    `json:"sequence"`
	Frame    uint32    `json:"frame"`
	Kind     EventKind `json:"kind"`
	EntityID uint16    `json:"entity_id"`
	Message  string    `json:"message"`
}

// EventJournal is a bounded, rate-limited circular buffer of Events. The
// tick orchestrator writes to it synchronously every frame; Start/Stop
// optionally run an async goroutine that flushes the buffer to a file,
// kept entirely outside the deterministic tick itself.
type EventJournal struct {
	buffer    [JournalBufferSize]Event
	writeHead uint64
	readHead  uint64

	limiter *rate.Limiter

	droppedCount uint64
	totalCount   uint64

	filePath string
	file     *os.File
	fileMu   sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewEventJournal builds an empty journal with the default rate limit.
func NewEventJournal() *EventJournal {
	return &EventJournal{
		limiter:  rate.NewLimiter(rate.Limit(MaxEventsPerSec), MaxEventsPerSec/10),
		stopChan: make(chan struct{}),
	}
}

// emit records one event, subject to the rate limit and buffer capacity.
// A rejected event increments droppedCount but never blocks or errors;
// the tick must never stall on its own diagnostics.
func (j *EventJournal) emit(ev Event) {
	if !j.limiter.Allow() {
		atomic.AddUint64(&j.droppedCount, 1)
		return
	}

	head := atomic.AddUint64(&j.writeHead, 1)
	tail := atomic.LoadUint64(&j.readHead)
	if head-tail >= JournalBufferSize {
		atomic.AddUint64(&j.readHead, 1)
		atomic.AddUint64(&j.droppedCount, 1)
	}

	ev.Sequence = head
	j.buffer[head%JournalBufferSize] = ev
	atomic.AddUint64(&j.totalCount, 1)
}

// EmitScriptFailure records a condition/action/status-effect script that
// returned an error; the policy that governs the script's own outcome
// (condition false, action no-op, energy refund) lives where the script
// actually ran, not here.
func (j *EventJournal) EmitScriptFailure(frame uint32, entityID uint16, err error) {
	j.emit(Event{Frame: frame, Kind: EventScriptFailure, EntityID: entityID, Message: err.Error()})
}

// EmitCorrectionWarning records a physics overlap correction that
// exceeded the configured maximum, a condition that is logged but never
// fails the tick.
func (j *EventJournal) EmitCorrectionWarning(frame uint32, entityID uint16, w physics.Warning) {
	msg := fmt.Sprintf("axis=%v penetration_raw=%d", w.Axis, w.Penetration.Raw())
	j.emit(Event{Frame: frame, Kind: EventCorrectionWarning, EntityID: entityID, Message: msg})
}

// EmitResourceExhausted records a spawn or status-effect creation that
// was silently dropped because its pool was at capacity.
func (j *EventJournal) EmitResourceExhausted(frame uint32, entityID uint16, err error) {
	j.emit(Event{Frame: frame, Kind: EventResourceExhausted, EntityID: entityID, Message: err.Error()})
}

// Dropped and Total report the journal's own health, for host-side
// metrics.
func (j *EventJournal) Dropped() uint64 { return atomic.LoadUint64(&j.droppedCount) }
func (j *EventJournal) Total() uint64   { return atomic.LoadUint64(&j.totalCount) }

// Drain returns every buffered event not yet drained, advancing the read
// head past them. Intended for a host polling the journal between ticks
// (or the async writer goroutine started by Start).
func (j *EventJournal) Drain() []Event {
	head := atomic.LoadUint64(&j.writeHead)
	tail := atomic.LoadUint64(&j.readHead)
	if head <= tail {
		return nil
	}
	if head-tail > JournalBufferSize {
		tail = head - JournalBufferSize
	}

	out := make([]Event, 0, head-tail)
	for seq := tail + 1; seq <= head; seq++ {
		out = append(out, j.buffer[seq%JournalBufferSize])
	}
	atomic.StoreUint64(&j.readHead, head)
	return out
}

// Start begins an async goroutine that periodically drains the journal
// to filePath as newline-delimited JSON. The tick loop itself never
// touches the filesystem; this is purely an optional host-side sink.
func (j *EventJournal) Start(filePath string) error {
	if j.running.Load() {
		return nil
	}
	j.filePath = filePath
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		j.file = f
	}
	j.running.Store(true)
	j.wg.Add(1)
	go j.writerLoop()
	return nil
}

// Stop halts the writer goroutine and closes the sink file, if any.
func (j *EventJournal) Stop() {
	j.stopOnce.Do(func() {
		j.running.Store(false)
		close(j.stopChan)
		j.wg.Wait()

		j.fileMu.Lock()
		if j.file != nil {
			j.file.Close()
		}
		j.fileMu.Unlock()
	})
}

func (j *EventJournal) writerLoop() {
	defer j.wg.Done()

	ticker := time.NewTicker(FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			j.flush()
			return
		case <-ticker.C:
			j.flush()
		}
	}
}

func (j *EventJournal) flush() {
	events := j.Drain()
	if len(events) == 0 || j.file == nil {
		return
	}
	j.fileMu.Lock()
	defer j.fileMu.Unlock()
	enc := json.NewEncoder(j.file)
	for _, ev := range events {
		_ = enc.Encode(ev)
	}
}
