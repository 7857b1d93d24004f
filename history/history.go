// Package history implements the persistent command history store: an
// ordered log of prior lines, a navigation cursor over it plus a scratch
// slot, regex pattern search with a sorted hit index, and named marks.
//
// The design is grounded on the teacher's internal/history Sources type:
// the scratch/hpos/index-modulo-(len+1) navigation and the load/ingest/
// persist split are the same shape, simplified down from the teacher's
// multi-source registry (this editor has exactly one history) to a single
// flat store.
package history

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"
)

// DefaultMaxEntries is the default retained entry count on load.
const DefaultMaxEntries = 5000

// DefaultPath is the compile-time default history file location, expanded
// against $HOME by the caller. Flush is suppressed when the store's path
// equals this value (literally or with "~/" expanded to the home
// directory) and the path was never explicitly supplied (see
// SPEC_FULL.md §E.1); this resolves the Open Question in spec.md §9 about
// the observed default-path write suppression.
const DefaultPath = "~/.iris_history"

var defaultRejectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^h\s*$`),
	regexp.MustCompile(`(?i)^halt\s*$`),
}

// hit is one pattern-search match: the entry index and the matched range
// within that entry, as returned by regexp.FindStringIndex.
type hit struct {
	index      int
	matchStart int
	matchEnd   int
}

// Store is the command history: an ordered entry log, a navigation index,
// a scratch slot for the in-progress line, and an optional active search.
type Store struct {
	path         string
	explicitPath bool
	maxEntries   int
	rejectRE     []*regexp.Regexp

	entries []string
	initLen int // number of entries present right after Load, for persistence.

	index   int
	scratch string

	skipBuffers int

	marks map[byte]int

	searchPattern *regexp.Regexp
	searchHits    []hit
}

// New returns an empty store using the default reject patterns and
// DefaultMaxEntries.
func New() *Store {
	return &Store{
		maxEntries: DefaultMaxEntries,
		rejectRE:   defaultRejectPatterns,
		marks:      make(map[byte]int),
	}
}

// SetRejectPatterns overrides the default reject-pattern set.
func (s *Store) SetRejectPatterns(patterns []*regexp.Regexp) {
	s.rejectRE = patterns
}

// SetMaxEntries overrides DefaultMaxEntries for a subsequent Load.
func (s *Store) SetMaxEntries(n int) {
	s.maxEntries = n
}

// JumpLatest moves the navigation index directly to the scratch slot
// (vim's "G": jump to the bottommost line, the one still being typed)
// without stepping through the intervening entries.
func (s *Store) JumpLatest() string {
	s.index = len(s.entries)
	return s.scratch
}

// Load reads path (if it exists) and retains lines beginning with ':' as
// entries, truncated to the last maxEntries. explicit records whether the
// path was supplied by the caller (vs. the compile-time default), which
// governs Flush's write-suppression rule.
func (s *Store) Load(path string, explicit bool) error {
	s.path = path
	s.explicitPath = explicit
	s.index = 0
	s.entries = nil

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		s.initLen = 0
		s.index = len(s.entries)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ":") {
			s.entries = append(s.entries, line[1:])
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		s.entries = append([]string(nil), s.entries[len(s.entries)-s.maxEntries:]...)
	}

	s.initLen = len(s.entries)
	s.index = len(s.entries)

	return nil
}

// Len returns the number of entries, not counting the scratch slot.
func (s *Store) Len() int { return len(s.entries) }

// Index returns the current navigation index; Len() itself denotes the
// scratch slot.
func (s *Store) Index() int { return s.index }

// SetBuffer records the current line as scratch, unless skipBuffers is
// positive, in which case it is decremented and the call is a no-op. This
// is how history-navigation actions keep their transient display from
// overwriting scratch.
func (s *Store) SetBuffer(line []byte) {
	if s.skipBuffers > 0 {
		s.skipBuffers--
		return
	}
	s.scratch = string(line)
}

// SkipNextBuffers arranges for the next n calls to SetBuffer to be no-ops.
func (s *Store) SkipNextBuffers(n int) {
	s.skipBuffers += n
}

// GoPrev moves the navigation index one step toward older entries, modulo
// len(entries)+1, and returns the line now at the index (the scratch
// slot's content if index == Len()).
func (s *Store) GoPrev() string {
	return s.step(-1)
}

// GoNext moves the navigation index one step toward newer entries, modulo
// len(entries)+1.
func (s *Store) GoNext() string {
	return s.step(1)
}

func (s *Store) step(delta int) string {
	n := len(s.entries) + 1
	s.index = ((s.index+delta)%n + n) % n
	return s.current()
}

func (s *Store) current() string {
	if s.index == len(s.entries) {
		return s.scratch
	}
	return s.entries[s.index]
}

// Ingest is called on line submission. scratch is appended to entries if
// non-empty, distinct from the last entry, and matched by none of the
// reject patterns; the navigation index then resets to the scratch slot
// and scratch is cleared. If a search is active, a matching new entry is
// appended to search_hits too.
func (s *Store) Ingest() {
	line := s.scratch

	if line != "" && !s.sameAsLast(line) && !s.rejected(line) {
		s.entries = append(s.entries, line)

		if s.searchPattern != nil {
			if loc := s.searchPattern.FindStringIndex(line); loc != nil {
				idx := len(s.entries) - 1
				s.insertHit(hit{index: idx, matchStart: loc[0], matchEnd: loc[1]})
			}
		}
	}

	s.index = len(s.entries)
	s.scratch = ""
}

func (s *Store) sameAsLast(line string) bool {
	return len(s.entries) > 0 && s.entries[len(s.entries)-1] == line
}

func (s *Store) rejected(line string) bool {
	for _, re := range s.rejectRE {
		if re.MatchString(line) && re.FindString(line) == line {
			return true
		}
	}
	return false
}

// StartSearch compiles pattern and scans all entries, building a
// search_hits list sorted by entry index.
func (s *Store) StartSearch(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}

	s.searchPattern = re
	s.searchHits = s.searchHits[:0]

	for i, entry := range s.entries {
		if loc := re.FindStringIndex(entry); loc != nil {
			s.searchHits = append(s.searchHits, hit{index: i, matchStart: loc[0], matchEnd: loc[1]})
		}
	}

	return nil
}

// StopSearch clears the active search pattern and hit list.
func (s *Store) StopSearch() {
	s.searchPattern = nil
	s.searchHits = nil
}

// Searching reports whether a search is currently active.
func (s *Store) Searching() bool { return s.searchPattern != nil }

func (s *Store) insertHit(h hit) {
	i, found := slices.BinarySearchFunc(s.searchHits, h, func(a, b hit) int {
		return a.index - b.index
	})
	if found {
		return
	}
	s.searchHits = slices.Insert(s.searchHits, i, h)
}

// SearchNext binary-searches search_hits for the first hit strictly after
// the current index, moving forward (wrapping to the first hit past the
// end), and returns the matched line plus ok=false if there are no hits
// at all.
func (s *Store) SearchNext() (string, bool) {
	return s.searchStep(1)
}

// SearchPrev is the mirror of SearchNext, moving toward older hits.
func (s *Store) SearchPrev() (string, bool) {
	return s.searchStep(-1)
}

func (s *Store) searchStep(dir int) (string, bool) {
	if len(s.searchHits) == 0 {
		return "", false
	}

	pos, found := slices.BinarySearchFunc(s.searchHits, hit{index: s.index}, func(a, b hit) int {
		return a.index - b.index
	})

	var next int
	switch {
	case dir > 0:
		if found {
			next = pos + 1
		} else {
			next = pos
		}
		if next >= len(s.searchHits) {
			next = 0
		}
	default:
		if found {
			next = pos - 1
		} else {
			next = pos - 1
		}
		if next < 0 {
			next = len(s.searchHits) - 1
		}
	}

	h := s.searchHits[next]
	s.index = h.index

	return s.entries[h.index], true
}

// SetMark stores the current index under letter.
func (s *Store) SetMark(letter byte) {
	s.marks[letter] = s.index
}

// RetrieveMark restores the index stored under letter and returns the
// line now at that index, or ok=false if no such mark exists.
func (s *Store) RetrieveMark(letter byte) (string, bool) {
	idx, ok := s.marks[letter]
	if !ok {
		return "", false
	}

	s.index = idx
	return s.current(), true
}

// Flush appends every entry past the load-time length to the backing
// file, each prefixed ':'. Per spec.md §9 / SPEC_FULL.md §E.1, this is a
// no-op when the store's path is the compile-time default and was never
// explicitly overridden by the caller.
func (s *Store) Flush() error {
	if s.path == "" {
		return nil
	}
	if !s.explicitPath {
		if s.path == DefaultPath {
			return nil
		}
		if home, err := os.UserHomeDir(); err == nil && s.path == filepath.Join(home, DefaultPath[2:]) {
			return nil
		}
	}
	if len(s.entries) <= s.initLen {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range s.entries[s.initLen:] {
		if _, err := w.WriteString(":" + e + "\n"); err != nil {
			return err
		}
	}

	return w.Flush()
}
