package utils

import "sync"

// LinkSet records detail links seen during a crawl and counts repeats.
// It never filters anything; callers use it to report how many listings
// reappeared on later result pages.
type LinkSet struct {
	mu      sync.Mutex
	seen    map[string]int
	repeats int
}

// NewLinkSet creates an empty LinkSet.
func NewLinkSet() *LinkSet {
	return &LinkSet{seen: make(map[string]int)}
}

// Add records link and reports whether it was seen for the first time.
func (s *LinkSet) Add(link string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen[link]++
	if s.seen[link] > 1 {
		s.repeats++
		return false
	}
	return true
}

// Seen returns how many times link was added.
func (s *LinkSet) Seen(link string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[link]
}

// Unique returns the number of distinct links.
func (s *LinkSet) Unique() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Repeats returns the number of Add calls that hit an already known link.
func (s *LinkSet) Repeats() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeats
}
