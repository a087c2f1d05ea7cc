package artifact

// EventType names a signal on the ordered emission stream.
type EventType string

// Per-artifact emission protocol, in this exact sequence: kind, id, title,
// clear, text deltas, finish.
const (
	EventKind      EventType = "data-kind"
	EventID        EventType = "data-id"
	EventTitle     EventType = "data-title"
	EventClear     EventType = "data-clear"
	EventTextDelta EventType = "data-textDelta"
	EventFinish    EventType = "data-finish"
)

// Event is one signal on the stream. Data is empty for clear and finish.
type Event struct {
	Type EventType
	Data string
}

// StreamWriter receives the ordered emission stream. Implementations are
// called from a single goroutine and need no internal synchronization.
type StreamWriter interface {
	Write(Event)
}
