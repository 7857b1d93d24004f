package classify

import "testing"

func TestVimWordStopsAtClassBoundary(t *testing.T) {
	s := []byte("I'm p.name !")
	got := VimWord(s, 0, false)
	want := 1 // "I" ends at 1, next char is "'" (punctuation) -> boundary

	if got != want {
		t.Fatalf("VimWord(%q, 0) = %d, want %d", s, got, want)
	}
}

func TestVimWordBegin(t *testing.T) {
	s := []byte("foo bar baz")
	if got := VimWordBegin(s, 8); got != 4 {
		t.Fatalf("VimWordBegin at word start = %d, want 4", got)
	}
	if got := VimWordBegin(s, 10); got != 8 {
		t.Fatalf("VimWordBegin mid-word = %d, want 8", got)
	}
	if got := VimWordBegin(s, 0); got != -1 {
		t.Fatalf("VimWordBegin at line start = %d, want -1", got)
	}
}

func TestChunkBoundaries(t *testing.T) {
	s := []byte("abc   def")
	if got := ChunkLeftmost(s, 3); got != 0 {
		t.Fatalf("ChunkLeftmost = %d, want 0", got)
	}
	if got := ChunkRightmost(s, 3); got != 6 {
		t.Fatalf("ChunkRightmost = %d, want 6", got)
	}
}

func TestVimFindTill(t *testing.T) {
	s := []byte("ABCDBCD")
	if got := VimFind(s, 2, 'C', false); got != 5 {
		t.Fatalf("VimFind forward = %d, want 5", got)
	}
	if got := VimTill(s, 2, 'C', false); got != 4 {
		t.Fatalf("VimTill forward = %d, want 4", got)
	}
}

func TestVimPair(t *testing.T) {
	s := []byte("(hey)")
	if got := VimPair(s, 0); got != 4 {
		t.Fatalf("VimPair( = %d, want 4", got)
	}
	if got := VimPair(s, 4); got != 0 {
		t.Fatalf("VimPair) = %d, want 0", got)
	}
}

func TestVimWordBoundary(t *testing.T) {
	s := []byte("(hey)")
	start, end := VimWordBoundary(s, 2, false)
	if start != 1 || end != 3 {
		t.Fatalf("VimWordBoundary = (%d,%d), want (1,3)", start, end)
	}
}
