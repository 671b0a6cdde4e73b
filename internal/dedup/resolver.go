// Package dedup decides whether a candidate is already known, either as a published
// post or as pending work.
package dedup

import (
	"strings"

	"NewsDesk/internal/domain"
)

// DefaultThreshold is the similarity above which two titles are considered the same story.
const DefaultThreshold = 0.6

// Snapshot is the known state for one ingestion cycle. It is built once per cycle and then
// queried for every candidate without further I/O.
type Snapshot struct {
	threshold float64
	ids       map[string]struct{}
	urls      map[string]struct{}
	titles    []string
}

// NewSnapshot returns an empty snapshot. A non-positive threshold selects DefaultThreshold.
func NewSnapshot(threshold float64) *Snapshot {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Snapshot{
		threshold: threshold,
		ids:       map[string]struct{}{},
		urls:      map[string]struct{}{},
	}
}

// AddIDs marks external ids as known.
func (s *Snapshot) AddIDs(ids ...string) {
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
}

// AddURLs marks canonical URLs as known.
func (s *Snapshot) AddURLs(urls ...string) {
	for _, u := range urls {
		if u != "" {
			s.urls[u] = struct{}{}
		}
	}
}

// AddTitles registers titles for fuzzy matching.
func (s *Snapshot) AddTitles(titles ...string) {
	for _, t := range titles {
		if n := normalize(t); n != "" {
			s.titles = append(s.titles, n)
		}
	}
}

// AddPosts registers recent posts.
func (s *Snapshot) AddPosts(posts []domain.PostRef) {
	for _, p := range posts {
		s.AddIDs(p.ExternalSourceID)
		s.AddURLs(p.CanonicalURL)
		s.AddTitles(p.Title)
	}
}

// AddQueued registers pending queue items.
func (s *Snapshot) AddQueued(items []domain.QueueItem) {
	for _, it := range items {
		s.AddIDs(it.ID)
		s.AddURLs(it.URL)
		s.AddTitles(CandidateTitle(it.Title, it.Text))
	}
}

// Remember adds an accepted candidate so later candidates of the same batch see it.
func (s *Snapshot) Remember(c domain.Candidate) {
	s.AddIDs(c.ExternalID)
	s.AddURLs(c.SourceURL)
	if c.Surrogate {
		s.AddTitles(CandidateTitle(c.Title, c.RawText))
	}
}

// IsDuplicate checks the exact key, then the canonical URL, then (for candidates without a
// platform-issued id) the best fuzzy title match.
func (s *Snapshot) IsDuplicate(c domain.Candidate) bool {
	if _, ok := s.ids[c.ExternalID]; ok && c.ExternalID != "" {
		return true
	}
	if c.SourceURL != "" {
		if _, ok := s.urls[c.SourceURL]; ok {
			return true
		}
	}
	if !c.Surrogate {
		return false
	}
	_, score := s.BestMatch(CandidateTitle(c.Title, c.RawText))
	return score > s.threshold
}

// BestMatch returns the known title most similar to title and its score.
func (s *Snapshot) BestMatch(title string) (string, float64) {
	n := normalize(title)
	if n == "" {
		return "", 0
	}

	var (
		best      string
		bestScore float64
	)
	for _, known := range s.titles {
		if score := similarity(n, known); score > bestScore {
			best, bestScore = known, score
		}
	}
	return best, bestScore
}

// IsDuplicate is the one-shot form over explicit snapshots.
func IsDuplicate(c domain.Candidate, recent []domain.PostRef, pending []domain.QueueItem, threshold float64) bool {
	s := NewSnapshot(threshold)
	s.AddPosts(recent)
	s.AddQueued(pending)
	return s.IsDuplicate(c)
}

// CandidateTitle returns the title, or the first non-empty line of text when there is none.
func CandidateTitle(title, text string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	for _, line := range strings.Split(text, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			return l
		}
	}
	return ""
}
