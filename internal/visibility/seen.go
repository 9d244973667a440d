package visibility

import "sync"

// Seen is the set of keys already notified during one page load.
type Seen struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewSeen() *Seen {
	return &Seen{keys: make(map[string]struct{})}
}

// Mark adds key and reports whether it was new.
func (s *Seen) Mark(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

func (s *Seen) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[key]
	return ok
}

func (s *Seen) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
