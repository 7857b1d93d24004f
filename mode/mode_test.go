package mode

import (
	"testing"

	"github.com/shuheng-liu/iridescent/action"
	"github.com/shuheng-liu/iridescent/clipboard"
	"github.com/shuheng-liu/iridescent/line"
)

type fakeHistory struct {
	prevQueue []string
	nextQueue []string
	marks     map[byte]int
	lines     []string
	searchIdx []int
	searchPos int
}

func (f *fakeHistory) GoPrev() string {
	if len(f.prevQueue) == 0 {
		return ""
	}
	v := f.prevQueue[0]
	f.prevQueue = f.prevQueue[1:]
	return v
}

func (f *fakeHistory) GoNext() string {
	if len(f.nextQueue) == 0 {
		return ""
	}
	v := f.nextQueue[0]
	f.nextQueue = f.nextQueue[1:]
	return v
}

func (f *fakeHistory) StartSearch(pattern string) error {
	f.searchIdx = nil
	for i, l := range f.lines {
		if matchesFake(pattern, l) {
			f.searchIdx = append(f.searchIdx, i)
		}
	}
	f.searchPos = -1
	return nil
}

func matchesFake(pattern, l string) bool {
	return len(l) > 0 && len(pattern) > 0 && l[0] == pattern[0]
}

func (f *fakeHistory) SearchNext() (string, bool) {
	if len(f.searchIdx) == 0 {
		return "", false
	}
	f.searchPos = (f.searchPos + 1) % len(f.searchIdx)
	return f.lines[f.searchIdx[f.searchPos]], true
}

func (f *fakeHistory) SearchPrev() (string, bool) {
	if len(f.searchIdx) == 0 {
		return "", false
	}
	f.searchPos = ((f.searchPos-1)%len(f.searchIdx) + len(f.searchIdx)) % len(f.searchIdx)
	return f.lines[f.searchIdx[f.searchPos]], true
}

func (f *fakeHistory) SetMark(letter byte) {
	if f.marks == nil {
		f.marks = make(map[byte]int)
	}
	f.marks[letter] = 1
}

func (f *fakeHistory) RetrieveMark(letter byte) (string, bool) {
	_, ok := f.marks[letter]
	return "marked", ok
}

func (f *fakeHistory) SkipNextBuffers(n int) {}

func TestNormalBufferFiresOnCompleteMotion(t *testing.T) {
	c := New(nil)
	buf := line.New()
	buf.Set([]byte("I'm p.name !"), 0)
	var cb clipboard.Clipboard

	if out := c.NormalBuffer('d', buf, &cb); out.Fired {
		t.Fatal("'d' alone should not fire")
	}
	out := c.NormalBuffer('w', buf, &cb)
	if !out.Fired {
		t.Fatal("'dw' should fire")
	}
	if string(buf.Bytes()) != "'m p.name !" {
		t.Fatalf("line = %q", buf.Bytes())
	}
}

func TestNormalBufferInvalidPrefixResets(t *testing.T) {
	c := New(nil)
	buf := line.New()
	buf.Set([]byte("abc"), 0)
	var cb clipboard.Clipboard

	c.NormalBuffer('d', buf, &cb)
	out := c.NormalBuffer('z', buf, &cb)
	if !out.Invalid {
		t.Fatal("'dz' should be invalid")
	}

	// accumulator must have reset: 'w' alone now starts a fresh (invalid,
	// single-byte) lookup rather than being treated as 'dz''s argument.
	out2 := c.NormalBuffer('w', buf, &cb)
	if !out2.Invalid {
		t.Fatal("'w' is not itself a leading byte and should be invalid after reset")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	c := New(nil)
	buf := line.New()
	buf.Set([]byte("abc"), 2)
	var cb clipboard.Clipboard

	c.NormalBuffer('x', buf, &cb)
	afterDelete := append([]byte(nil), buf.Bytes()...)
	afterPos := buf.Pos()

	c.Undo(buf)
	if string(buf.Bytes()) != "abc" {
		t.Fatalf("Undo: line = %q, want abc", buf.Bytes())
	}

	c.Redo(buf)
	if string(buf.Bytes()) != string(afterDelete) || buf.Pos() != afterPos {
		t.Fatalf("Redo: line=%q pos=%d, want %q pos=%d", buf.Bytes(), buf.Pos(), afterDelete, afterPos)
	}
}

func TestRepeatReplaysLastRepeatable(t *testing.T) {
	c := New(nil)
	buf := line.New()
	buf.Set([]byte("aaaa"), 0)
	var cb clipboard.Clipboard

	c.NormalBuffer('x', buf, &cb)
	if string(buf.Bytes()) != "aaa" {
		t.Fatalf("after x: %q", buf.Bytes())
	}

	c.Repeat(buf, &cb)
	if string(buf.Bytes()) != "aa" {
		t.Fatalf("after repeat: %q, want aa", buf.Bytes())
	}
}

func TestModeTransitionsEmitCursorEscapes(t *testing.T) {
	c := New(nil)
	if string(c.SetInsert()) != CursorInsert {
		t.Fatal("SetInsert escape mismatch")
	}
	if string(c.SetReplace()) != CursorReplace {
		t.Fatal("SetReplace escape mismatch")
	}
	if string(c.SetNormal()) != CursorNormal {
		t.Fatal("SetNormal escape mismatch")
	}
	if c.Mode() != action.Normal {
		t.Fatal("Mode() should be Normal after SetNormal")
	}
}

func TestHistoryMarkSetAndRetrieve(t *testing.T) {
	h := &fakeHistory{}
	c := New(h)
	buf := line.New()
	buf.Set([]byte("xyz"), 0)
	var cb clipboard.Clipboard

	c.NormalBuffer('m', buf, &cb)
	c.NormalBuffer('a', buf, &cb)

	c.NormalBuffer('`', buf, &cb)
	c.NormalBuffer('a', buf, &cb)

	if string(buf.Bytes()) != "marked" {
		t.Fatalf("line = %q, want marked", buf.Bytes())
	}
}
