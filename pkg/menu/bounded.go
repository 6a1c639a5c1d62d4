package menu

import (
	"errors"
	"fmt"
)

// DefaultCapacity is the number of entries shown directly when no capacity is configured.
const DefaultCapacity = 5

// ErrInvalidCapacity is returned when a menu is constructed with a non-positive capacity.
var ErrInvalidCapacity = errors.New("invalid capacity")

// Entry is a named action held by a Bounded menu.
type Entry struct {
	// Title is used for both display and lookup. It does not have to be unique.
	Title string

	// Action is an opaque invocation handle. The menu stores it and never calls it.
	Action any

	// Target is an opaque receiver paired with Action, forwarded unchanged.
	Target any
}

// Bounded keeps an ordered list of entries and splits it into a primary group
// of at most capacity entries and an overflow group holding the rest.
//
// Bounded is not safe for concurrent use. Owners that mutate it from more than
// one goroutine must serialize access themselves.
type Bounded struct {
	capacity int
	entries  []Entry
}

// New creates an empty menu that shows at most capacity entries directly.
func New(capacity int) (*Bounded, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d, must be greater than zero", ErrInvalidCapacity, capacity)
	}
	return &Bounded{capacity: capacity}, nil
}

// Capacity returns the maximum number of primary entries.
func (b *Bounded) Capacity() int {
	return b.capacity
}

// Len returns the total number of entries.
func (b *Bounded) Len() int {
	return len(b.entries)
}

// Add appends an entry. Entries past capacity land in the overflow group.
func (b *Bounded) Add(title string, action, target any) {
	b.entries = append(b.entries, Entry{Title: title, Action: action, Target: target})
}

// RemoveByTitle removes every entry whose title equals title and reports how
// many were removed. Removing a missing title is a no-op.
func (b *Bounded) RemoveByTitle(title string) int {
	kept := b.entries[:0]
	for _, e := range b.entries {
		if e.Title != title {
			kept = append(kept, e)
		}
	}

	removed := len(b.entries) - len(kept)

	// clear the tail so dropped actions can be collected
	for i := len(kept); i < len(b.entries); i++ {
		b.entries[i] = Entry{}
	}
	b.entries = kept

	return removed
}

// Layout returns copies of the primary and overflow groups in insertion order.
func (b *Bounded) Layout() (primary, overflow []Entry) {
	n := min(len(b.entries), b.capacity)

	primary = make([]Entry, n)
	copy(primary, b.entries[:n])

	overflow = make([]Entry, len(b.entries)-n)
	copy(overflow, b.entries[n:])

	return primary, overflow
}
