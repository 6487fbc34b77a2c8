package vocab

import "sync/atomic"

// Store holds the current vocabulary snapshot. Readers get whichever
// snapshot was current when they called [Store.Vocabulary] and keep it for
// as long as they need; writers replace it wholesale with [Store.Swap].
//
// The zero value is an empty store whose Vocabulary is nil.
type Store struct {
	current atomic.Pointer[Vocabulary]
}

// NewStore returns a Store primed with v.
func NewStore(v *Vocabulary) *Store {
	s := &Store{}
	s.current.Store(v)
	return s
}

// Vocabulary returns the current snapshot, or nil when none was stored.
func (s *Store) Vocabulary() *Vocabulary {
	return s.current.Load()
}

// Swap installs v and returns the previous snapshot.
func (s *Store) Swap(v *Vocabulary) *Vocabulary {
	return s.current.Swap(v)
}
