// Package ids defines the monotonic integer identifier namespaces used by the
// entity store: classes, entities and curator groups each get their own
// never-reused, strictly increasing sequence.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ClassID identifies a class. Assigned from the class namespace counter.
type ClassID uint64

// EntityID identifies an entity. Assigned from the entity namespace counter.
type EntityID uint64

// CuratorGroupID identifies a curator group.
type CuratorGroupID uint64

// CuratorID identifies a curator. It is the same value space as a signed
// account id: adding a curator to a group names the account directly, there
// is no separate curator registry.
type CuratorID = uuid.UUID

// PropertyID is a dense, array-index identifier local to one class. It is
// never renumbered even if the property is later locked or deprecated.
type PropertyID uint16

// SchemaID is a dense, array-index identifier local to one class.
type SchemaID uint16

func (id ClassID) String() string        { return fmt.Sprintf("class#%d", uint64(id)) }
func (id EntityID) String() string       { return fmt.Sprintf("entity#%d", uint64(id)) }
func (id CuratorGroupID) String() string { return fmt.Sprintf("curator-group#%d", uint64(id)) }

// Sequence is a process-wide monotonic counter for one id namespace. Ids are
// never reused, even if the entity they were assigned to is later removed.
type Sequence[T ~uint64] struct {
	mu   sync.Mutex
	next T
}

// NewSequence creates a sequence whose first issued id is 1 (0 is reserved
// as the never-assigned sentinel value, matching the teacher convention of
// treating the zero value of an id type as "absent").
func NewSequence[T ~uint64]() *Sequence[T] {
	return &Sequence[T]{next: 1}
}

// Next issues the next id in the sequence and advances it.
func (s *Sequence[T]) Next() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return id
}

// Peek returns the id that would be issued by the next call to Next, without
// advancing the sequence. Used to restore a sequence from persisted state.
func (s *Sequence[T]) Peek() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Restore sets the sequence's next value, used when rehydrating a sequence
// from durable storage on process start. Restore only moves the sequence
// forward: a value not greater than the current next is ignored. The
// sequence has no way to know the high-water mark of previously issued ids
// beyond what it is told, so callers must pass a value past every issued id.
func (s *Sequence[T]) Restore(next T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if next > s.next {
		s.next = next
	}
}
