package run

// Event log bounds.
const (
	DefaultLogCapacity = 120
	MaxEventRunes      = 170
)

// EventLog is the bounded, oldest-first message history of a run.
type EventLog struct {
	Capacity int      `json:"capacity"`
	Entries  []string `json:"entries"`
}

// NewEventLog returns an empty log holding at most capacity entries.
// A capacity below 1 selects DefaultLogCapacity.
func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		capacity = DefaultLogCapacity
	}
	return &EventLog{Capacity: capacity, Entries: []string{}}
}

// Append adds lines, truncating each to MaxEventRunes and dropping the
// oldest entries beyond capacity.
//
// Postcondition: len(Entries) <= Capacity.
func (l *EventLog) Append(lines ...string) {
	if l.Capacity < 1 {
		l.Capacity = DefaultLogCapacity
	}
	for _, line := range lines {
		if r := []rune(line); len(r) > MaxEventRunes {
			line = string(r[:MaxEventRunes])
		}
		l.Entries = append(l.Entries, line)
	}
	if over := len(l.Entries) - l.Capacity; over > 0 {
		l.Entries = append([]string(nil), l.Entries[over:]...)
	}
}

// Tail returns up to n of the newest entries, oldest first.
func (l *EventLog) Tail(n int) []string {
	if n <= 0 || n > len(l.Entries) {
		n = len(l.Entries)
	}
	return append([]string(nil), l.Entries[len(l.Entries)-n:]...)
}
