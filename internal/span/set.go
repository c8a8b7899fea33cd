package span

// Entry is an accepted span and the payload registered with it.
type Entry[T any] struct {
	Span  Span
	Value T
}

// Set holds pairwise non-overlapping spans in insertion order.
type Set[T any] struct {
	entries []Entry[T]
}

func (s *Set[T]) Len() int { return len(s.entries) }

// Entries returns the accepted spans in insertion order.
func (s *Set[T]) Entries() []Entry[T] { return s.entries }

// Insert registers sp with payload v and reports whether v was accepted.
//
// Spans that sp subsumes are dropped. If sp then overlaps an accepted span,
// that span is widened to cover sp and keeps its own payload; v is rejected
// and its rewrite is left to a later pass. Otherwise sp is appended.
func (s *Set[T]) Insert(sp Span, v T) bool {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !Subsumes(sp, e.Span) {
			kept = append(kept, e)
		}
	}
	s.entries = kept

	for i := range s.entries {
		if Overlaps(s.entries[i].Span, sp) {
			s.entries[i].Span = Merge(s.entries[i].Span, sp)
			s.settle(i)
			return false
		}
	}
	s.entries = append(s.entries, Entry[T]{Span: sp, Value: v})
	return true
}

// settle absorbs every span overlapping the widened entry i until the set is
// pairwise non-overlapping again.
func (s *Set[T]) settle(i int) {
	for changed := true; changed; {
		changed = false
		for j := 0; j < len(s.entries); j++ {
			if j == i || !Overlaps(s.entries[i].Span, s.entries[j].Span) {
				continue
			}
			s.entries[i].Span = Merge(s.entries[i].Span, s.entries[j].Span)
			s.entries = append(s.entries[:j], s.entries[j+1:]...)
			if j < i {
				i--
			}
			changed = true
			break
		}
	}
}
