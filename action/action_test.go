package action

import (
	"testing"

	"github.com/shuheng-liu/iridescent/clipboard"
	"github.com/shuheng-liu/iridescent/line"
)

func TestExecDWDeletesFirstWord(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("I'm p.name !"), 0)
	var cb clipboard.Clipboard

	res := Exec([]byte("dw"), buf, &cb)

	if string(res.Ops) != line.Right+line.Delete {
		t.Fatalf("Ops = %q, want one RIGHT + one DELETE", res.Ops)
	}
	if string(buf.Bytes()) != "'m p.name !" {
		t.Fatalf("line = %q, want \"'m p.name !\"", buf.Bytes())
	}
	if string(cb.Paste()) != "I" {
		t.Fatalf("clipboard = %q, want I", cb.Paste())
	}
}

func TestExecDiParen(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("(hey)"), 2)
	var cb clipboard.Clipboard

	res := Exec([]byte("di("), buf, &cb)

	if string(buf.Bytes()) != "()" {
		t.Fatalf("line = %q, want ()", buf.Bytes())
	}
	if buf.Pos() != 1 {
		t.Fatalf("pos = %d, want 1", buf.Pos())
	}
	if string(cb.Paste()) != "hey" {
		t.Fatalf("clipboard = %q, want hey", cb.Paste())
	}
	_ = res
}

func TestExecYankCopiesWithoutMutating(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("hello world"), 0)
	var cb clipboard.Clipboard

	res := Exec([]byte("yw"), buf, &cb)

	if len(res.Ops) != 0 {
		t.Fatalf("Ops = %q, want empty (yank emits no edits)", res.Ops)
	}
	if string(buf.Bytes()) != "hello world" {
		t.Fatalf("line mutated by yank: %q", buf.Bytes())
	}
	if string(cb.Paste()) != "hello " {
		t.Fatalf("clipboard = %q, want \"hello \"", cb.Paste())
	}
}

func TestExecXDeletesCharAtCursor(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("abc"), 1)
	var cb clipboard.Clipboard

	Exec([]byte("x"), buf, &cb)

	if string(buf.Bytes()) != "ac" {
		t.Fatalf("line = %q, want ac", buf.Bytes())
	}
	if string(cb.Paste()) != "b" {
		t.Fatalf("clipboard = %q, want b", cb.Paste())
	}
}

func TestExecTildeTogglesCase(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("aBc"), 0)
	var cb clipboard.Clipboard

	Exec([]byte("~"), buf, &cb)
	if string(buf.Bytes()) != "ABc" {
		t.Fatalf("line = %q, want ABc", buf.Bytes())
	}
	if buf.Pos() != 1 {
		t.Fatalf("pos = %d, want 1", buf.Pos())
	}
}

func TestExecTildeNoopOnNonLetter(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("1bc"), 0)
	var cb clipboard.Clipboard

	res := Exec([]byte("~"), buf, &cb)
	if len(res.Ops) != 0 {
		t.Fatalf("Ops = %q, want empty on non-letter", res.Ops)
	}
	if string(buf.Bytes()) != "1bc" {
		t.Fatalf("line mutated: %q", buf.Bytes())
	}
}

func TestExecPasteAfter(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("ac"), 0)
	var cb clipboard.Clipboard
	cb.Copy([]byte("b"))

	Exec([]byte("p"), buf, &cb)

	if string(buf.Bytes()) != "abc" {
		t.Fatalf("line = %q, want abc", buf.Bytes())
	}
}

func TestExecReplaceCharKeepsCursor(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("abc"), 1)
	var cb clipboard.Clipboard

	Exec([]byte("rX"), buf, &cb)

	if string(buf.Bytes()) != "aXc" {
		t.Fatalf("line = %q, want aXc", buf.Bytes())
	}
	if buf.Pos() != 1 {
		t.Fatalf("pos = %d, want 1", buf.Pos())
	}
}

func TestMotionCompleteStates(t *testing.T) {
	if done, needMore, invalid := MotionComplete('d', nil); done || !needMore || invalid {
		t.Fatalf("empty acc: done=%v needMore=%v invalid=%v", done, needMore, invalid)
	}
	if done, _, _ := MotionComplete('d', []byte("w")); !done {
		t.Fatal("'dw' should be complete")
	}
	if done, needMore, _ := MotionComplete('d', []byte("i")); done || !needMore {
		t.Fatalf("'di' should need more: done=%v needMore=%v", done, needMore)
	}
	if done, _, _ := MotionComplete('d', []byte("i(")); !done {
		t.Fatal("'di(' should be complete")
	}
	if _, _, invalid := MotionComplete('d', []byte("z")); !invalid {
		t.Fatal("'dz' should be invalid")
	}
}

func TestExecDTillStopsBeforeNextOccurrence(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("ABCDBCD"), 2)
	var cb clipboard.Clipboard

	Exec([]byte("dtC"), buf, &cb)
	if string(buf.Bytes()) != "ABCD" {
		t.Fatalf("line = %q, want ABCD", buf.Bytes())
	}
	if string(cb.Paste()) != "CDB" {
		t.Fatalf("clipboard = %q, want CDB", cb.Paste())
	}
}

func TestExecDFBackwardsIncludesCursorChar(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("ABCDBCD"), 5) // cursor on the second 'C'
	var cb clipboard.Clipboard

	Exec([]byte("dFB"), buf, &cb)
	if string(buf.Bytes()) != "ABCDD" {
		t.Fatalf("line = %q, want ABCDD", buf.Bytes())
	}
	if string(cb.Paste()) != "BC" {
		t.Fatalf("clipboard = %q, want BC", cb.Paste())
	}
	if buf.Pos() != 4 {
		t.Fatalf("pos = %d, want 4", buf.Pos())
	}
}

func TestExecDTBackwardsExcludesFoundChar(t *testing.T) {
	buf := line.New()
	buf.Set([]byte("ABCDBCD"), 5) // cursor on the second 'C'
	var cb clipboard.Clipboard

	Exec([]byte("dTB"), buf, &cb)
	if string(buf.Bytes()) != "ABCDBD" {
		t.Fatalf("line = %q, want ABCDBD", buf.Bytes())
	}
	if string(cb.Paste()) != "C" {
		t.Fatalf("clipboard = %q, want C", cb.Paste())
	}
	if buf.Pos() != 5 {
		t.Fatalf("pos = %d, want 5", buf.Pos())
	}
}
