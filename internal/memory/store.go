package memory

import (
	"sync"

	"github.com/kaphack/guest-concierge-pipeline/internal/core"
)

// Capacity is the number of turns kept per guest.
const Capacity = 20

// Store keeps the most recent turns per guest. Each guest has its own lock,
// so writers for different guests only share the brief map lookup.
type Store struct {
	mu     sync.RWMutex
	guests map[string]*guestLog
}

type guestLog struct {
	mu      sync.Mutex
	turns   []core.ConversationTurn
	retired bool
}

func NewStore() *Store {
	return &Store{guests: make(map[string]*guestLog)}
}

// Append adds a turn at the end of the guest's history and evicts from the
// front once the history exceeds Capacity.
func (s *Store) Append(guestID string, turn core.ConversationTurn) {
	for {
		entry := s.entry(guestID, true)

		entry.mu.Lock()
		if entry.retired {
			// Cleared between lookup and lock; retry on the fresh entry.
			entry.mu.Unlock()
			continue
		}

		keep := entry.turns
		if len(keep) >= Capacity {
			keep = keep[len(keep)-Capacity+1:]
		}
		next := make([]core.ConversationTurn, 0, len(keep)+1)
		next = append(next, keep...)
		next = append(next, turn)
		entry.turns = next

		entry.mu.Unlock()
		return
	}
}

// Get returns up to the last limit turns, oldest first. A non-positive limit
// yields an empty slice.
func (s *Store) Get(guestID string, limit int) []core.ConversationTurn {
	entry := s.entry(guestID, false)
	if entry == nil || limit <= 0 {
		return []core.ConversationTurn{}
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	turns := entry.turns
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]core.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}

// Len returns the number of stored turns for a guest.
func (s *Store) Len(guestID string) int {
	entry := s.entry(guestID, false)
	if entry == nil {
		return 0
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return len(entry.turns)
}

// Clear drops the guest's history. Clearing an unknown guest is a no-op.
func (s *Store) Clear(guestID string) {
	s.mu.Lock()
	entry, ok := s.guests[guestID]
	delete(s.guests, guestID)
	s.mu.Unlock()

	if !ok {
		return
	}
	entry.mu.Lock()
	entry.retired = true
	entry.turns = nil
	entry.mu.Unlock()
}

// Guests returns the number of guests with stored history.
func (s *Store) Guests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.guests)
}

func (s *Store) entry(guestID string, create bool) *guestLog {
	s.mu.RLock()
	entry, ok := s.guests[guestID]
	s.mu.RUnlock()
	if ok || !create {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.guests[guestID]; ok {
		return entry
	}
	entry = &guestLog{}
	s.guests[guestID] = entry
	return entry
}
