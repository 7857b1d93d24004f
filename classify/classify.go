// Package classify partitions bytes into the whitespace/word/punctuation
// classes used by the vim-style motions, and computes chunk and vim-word
// boundaries over them.
package classify

import "unicode"

// Class is one of the three byte classes used by the 3-class partitioning.
type Class int

// The three classes used outside "capital" mode.
const (
	Whitespace Class = iota
	Word
	Punctuation
)

// Of returns the 3-class classification of the single ASCII byte b. Callers
// iterating over a slice that may hold multi-byte UTF-8 text should use
// OfAt instead, which decodes the full rune before classifying it.
func Of(b byte) Class {
	switch {
	case isSpace(b):
		return Whitespace
	case isWord(b):
		return Word
	default:
		return Punctuation
	}
}

// OfCapital returns the 2-class ("capital" mode, for W/B/E) classification:
// true if b is non-whitespace, false if it is whitespace.
func OfCapital(b byte) bool {
	return !isSpace(b)
}

// OfAt returns the 3-class classification of the rune starting at s[i]. For
// an ASCII byte this is identical to Of; for a multi-byte UTF-8 lead byte it
// decodes the full rune via DecodeRune, so accented and non-Latin letters
// and digits classify as Word rather than falling through to Punctuation.
func OfAt(s []byte, i int) Class {
	if s[i] < 0x80 {
		return Of(s[i])
	}

	r, _ := DecodeRune(s, i)
	switch {
	case unicode.IsSpace(r):
		return Whitespace
	case unicode.IsLetter(r) || unicode.IsDigit(r):
		return Word
	default:
		return Punctuation
	}
}

// OfCapitalAt is OfAt's 2-class ("capital" mode) counterpart.
func OfCapitalAt(s []byte, i int) bool {
	if s[i] < 0x80 {
		return OfCapital(s[i])
	}

	r, _ := DecodeRune(s, i)
	return !unicode.IsSpace(r)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

func isWord(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

// sameClass reports whether a and b belong to the same class, using the
// 2-class partitioning when cap is true.
func sameClass(a, b byte, cap bool) bool {
	if cap {
		return OfCapital(a) == OfCapital(b)
	}
	return Of(a) == Of(b)
}

// ChunkLeftmost expands a 3-class chunk around the character left of pos,
// and returns the boundary index (the leftmost index of that chunk).
// Stepping is rune-aware (via DecodeRune), so the boundary never lands
// inside a multi-byte UTF-8 sequence. Requires 0 <= pos <= len(s).
func ChunkLeftmost(s []byte, pos int) int {
	if pos <= 0 {
		return 0
	}

	i := prevRuneStart(s, pos)
	cls := OfAt(s, i)

	for i > 0 {
		j := prevRuneStart(s, i)
		if OfAt(s, j) != cls {
			break
		}
		i = j
	}

	return i
}

// ChunkRightmost expands a 3-class chunk around the character right of pos,
// and returns the boundary index one past the rightmost index of that chunk.
// Stepping is rune-aware (via DecodeRune). Requires 0 <= pos <= len(s).
func ChunkRightmost(s []byte, pos int) int {
	if pos >= len(s) {
		return len(s)
	}

	i := pos
	cls := OfAt(s, i)

	for i < len(s) {
		_, size := DecodeRune(s, i)
		if size <= 0 {
			size = 1
		}
		i += size
		if i >= len(s) || OfAt(s, i) != cls {
			break
		}
	}

	return i
}

// prevRuneStart returns the byte index of the rune immediately preceding
// pos, walking back over UTF-8 continuation bytes and confirming the
// result via DecodeRune so a malformed sequence falls back to a plain
// single-byte step rather than misreporting a boundary.
func prevRuneStart(s []byte, pos int) int {
	i := pos - 1
	for i > 0 && isContinuation(s[i]) {
		i--
	}

	if _, size := DecodeRune(s, i); i+size != pos && i > 0 {
		return pos - 1
	}
	return i
}

func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}

// runeWidth returns the byte width of the rune starting at s[i], defaulting
// to 1 for a malformed or out-of-range sequence.
func runeWidth(s []byte, i int) int {
	_, size := DecodeRune(s, i)
	if size <= 0 {
		return 1
	}
	return size
}

func isSpaceAt(s []byte, i int) bool {
	return OfAt(s, i) == Whitespace
}

// VimWord returns the index of the next word-start after pos, or len(s) if
// there is none. Requires 0 <= pos < len(s).
func VimWord(s []byte, pos int, cap bool) int {
	n := len(s)
	if pos >= n {
		return n
	}

	i := pos
	start := classOf(s, i, cap)

	// Skip the rest of the current run.
	for i < n && classOf(s, i, cap) == start {
		i += runeWidth(s, i)
	}

	// Skip whitespace between runs: this also swallows trailing
	// whitespace as part of the "next word" motion, matching the
	// divergence from canonical vim documented in spec.md §4.1/§9.
	for i < n && isSpaceAt(s, i) {
		i += runeWidth(s, i)
	}

	return i
}

// VimWordEnd returns the index of the next word-end after pos (the start
// byte of the last rune in the run). If pos is already at the end of a word
// or sitting in whitespace, it first advances past it. Requires
// 0 <= pos < len(s).
func VimWordEnd(s []byte, pos int, cap bool) int {
	n := len(s)
	if pos >= n {
		return n
	}

	i := pos

	// Skip any whitespace first.
	for i < n && isSpaceAt(s, i) {
		i += runeWidth(s, i)
	}

	if i >= n {
		return n - 1
	}

	cls := classOf(s, i, cap)
	next := i + runeWidth(s, i)

	// If we started on a word-end (single char run or last char of a
	// run), advance past it before searching for the next end.
	if i == pos && (next >= n || classOf(s, next, cap) != cls) {
		i = next
		for i < n && isSpaceAt(s, i) {
			i += runeWidth(s, i)
		}
		if i >= n {
			return n - 1
		}
		cls = classOf(s, i, cap)
	}

	for {
		next := i + runeWidth(s, i)
		if next >= n || classOf(s, next, cap) != cls {
			break
		}
		i = next
	}

	return i
}

// VimWordBegin returns the index of the previous word-start before pos, or
// -1 if there is none. Requires 0 <= pos < len(s).
func VimWordBegin(s []byte, pos int) int {
	return vimWordBegin(s, pos, false)
}

// VimWordBeginCapital is VimWordBegin using the 2-class partitioning.
func VimWordBeginCapital(s []byte, pos int) int {
	return vimWordBegin(s, pos, true)
}

func vimWordBegin(s []byte, pos int, cap bool) int {
	if pos <= 0 {
		return -1
	}

	i := prevRuneStart(s, pos)

	for i > 0 && isSpaceAt(s, i) {
		i = prevRuneStart(s, i)
	}

	if isSpaceAt(s, i) {
		return -1
	}

	cls := classOf(s, i, cap)
	for i > 0 {
		j := prevRuneStart(s, i)
		if classOf(s, j, cap) != cls {
			break
		}
		i = j
	}

	return i
}

// VimWordBoundary returns the (start, endInclusive) of the contiguous run
// of the same class containing pos (endInclusive is the start byte of the
// run's last rune). Requires 0 <= pos < len(s).
func VimWordBoundary(s []byte, pos int, cap bool) (int, int) {
	cls := classOf(s, pos, cap)

	start := pos
	for start > 0 {
		j := prevRuneStart(s, start)
		if classOf(s, j, cap) != cls {
			break
		}
		start = j
	}

	end := pos
	for {
		next := end + runeWidth(s, end)
		if next >= len(s) || classOf(s, next, cap) != cls {
			break
		}
		end = next
	}

	return start, end
}

// VimFind returns the index of the first occurrence of ch strictly after
// (or, if backward, before) pos. The sentinel is len(s) going forward, -1
// going backward.
func VimFind(s []byte, pos int, ch byte, backward bool) int {
	if backward {
		for i := pos - 1; i >= 0; i-- {
			if s[i] == ch {
				return i
			}
		}
		return -1
	}

	for i := pos + 1; i < len(s); i++ {
		if s[i] == ch {
			return i
		}
	}
	return len(s)
}

// VimTill is VimFind shifted one step toward the cursor, if the result is
// in range.
func VimTill(s []byte, pos int, ch byte, backward bool) int {
	found := VimFind(s, pos, ch, backward)

	if backward {
		if found == -1 {
			return -1
		}
		return found + 1
	}

	if found == len(s) {
		return len(s)
	}
	return found - 1
}

var pairs = map[byte]byte{
	'(': ')', '[': ']', '{': '}', '<': '>',
}

var pairsRev = map[byte]byte{
	')': '(', ']': '[', '}': '{', '>': '<',
}

// VimPair is the bracket-matcher for ()[]{}<>. It scans in the direction
// implied by the bracket's role and returns the matching index, or pos
// unchanged if s[pos] is not a bracket or no match is found.
func VimPair(s []byte, pos int) int {
	if pos < 0 || pos >= len(s) {
		return pos
	}

	ch := s[pos]

	if open, ok := pairs[ch]; ok {
		depth := 0
		for i := pos; i < len(s); i++ {
			switch s[i] {
			case ch:
				depth++
			case open:
				depth--
				if depth == 0 {
					return i
				}
			}
		}
		return pos
	}

	if open, ok := pairsRev[ch]; ok {
		depth := 0
		for i := pos; i >= 0; i-- {
			switch s[i] {
			case ch:
				depth++
			case open:
				depth--
				if depth == 0 {
					return i
				}
			}
		}
		return pos
	}

	return pos
}

func classOf(s []byte, i int, cap bool) int {
	if cap {
		if OfCapitalAt(s, i) {
			return 1
		}
		return 0
	}
	return int(OfAt(s, i))
}
