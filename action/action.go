// Package action implements the static vim command catalog: arity,
// repeat/undo metadata, and the pure on_act(arg, line, pos) functions
// that compute edit primitives and controller side-ops.
//
// Grounded on the teacher's vim.go: viCommands() is the direct model for
// the catalog below, and viChangeTo/viDeleteTo/viYankTo are the model for
// the generic wrapChange/wrapYank decorators that spec.md §9 asks for
// (one motion-range computation shared by delete, change, and yank).
package action

import (
	"unicode"

	"github.com/shuheng-liu/iridescent/classify"
	"github.com/shuheng-liu/iridescent/clipboard"
	"github.com/shuheng-liu/iridescent/line"
)

// Mode is one of the editor's three modes.
type Mode int

const (
	Normal Mode = iota
	Insert
	Replace
)

// SideOpKind identifies the kind of controller directive a SideOp
// carries; spec.md §4.5 calls these "mode change, clipboard copy,
// history search start, history navigate, mark set/retrieve".
type SideOpKind int

const (
	SideModeChange SideOpKind = iota
	SideHistorySearchStart
	SideHistoryGoPrev
	SideHistoryGoNext
	SideHistorySearchNext
	SideHistorySearchPrev
	SideMarkSet
	SideMarkRetrieve
)

// SideOp is one controller directive emitted alongside a command's edit
// primitives.
type SideOp struct {
	Kind    SideOpKind
	Mode    Mode
	Letter  byte
	Pattern string
}

// Spec is a catalog entry's arity and repeat/undo metadata.
type Spec struct {
	NArgs        int  // 0, 1, or -1 (variadic, terminated by Terminators)
	Terminators  []byte
	Repeatable   bool
	Undoable     bool
	PreserveRedo bool
	IsMotionOp   bool // d/c/y: completion is driven by MotionComplete, not Terminators
}

// CtrlR is the Ctrl-R byte used for redo.
const CtrlR = 0x12

var catalog = map[byte]Spec{
	'f': {NArgs: 1, Repeatable: true},
	't': {NArgs: 1, Repeatable: true},
	'F': {NArgs: 1, Repeatable: true},
	'T': {NArgs: 1, Repeatable: true},

	'd': {IsMotionOp: true, Repeatable: true, Undoable: true},
	'c': {IsMotionOp: true, Repeatable: true, Undoable: true},
	'y': {IsMotionOp: true, Repeatable: true},

	'x': {NArgs: 0, Repeatable: true, Undoable: true},
	's': {NArgs: 0, Repeatable: true, Undoable: true},

	'i': {NArgs: 0},
	'I': {NArgs: 0},
	'a': {NArgs: 0},
	'A': {NArgs: 0},

	'r': {NArgs: 1, Repeatable: true, Undoable: true},
	'R': {NArgs: 0},

	'p': {NArgs: 0, Repeatable: true, Undoable: true},
	'P': {NArgs: 0, Repeatable: true, Undoable: true},
	'~': {NArgs: 0, Repeatable: true, Undoable: true},

	'/': {NArgs: -1, Terminators: []byte{'\r'}},
	'?': {NArgs: -1, Terminators: []byte{'\r'}},
	'n': {NArgs: 0},
	'N': {NArgs: 0},

	'.': {NArgs: 0},
	'u': {NArgs: 0, PreserveRedo: true},
	CtrlR: {NArgs: 0, PreserveRedo: true},

	'm': {NArgs: 1},
	'`': {NArgs: 1},
}

// Lookup returns the catalog Spec for a leading command byte.
func Lookup(lead byte) (Spec, bool) {
	s, ok := catalog[lead]
	return s, ok
}

// IsTerminator reports whether b belongs to spec's terminator set.
func IsTerminator(terms []byte, b byte) bool {
	for _, t := range terms {
		if t == b {
			return true
		}
	}
	return false
}

const insideTargets = "wW"

// MotionComplete drives the d/c/y sub-grammar: given the bytes
// accumulated after the op byte, reports whether the motion is complete,
// needs one more byte, or is invalid.
func MotionComplete(op byte, acc []byte) (done, needMore, invalid bool) {
	if len(acc) == 0 {
		return false, true, false
	}

	c0 := acc[0]
	switch {
	case c0 == op:
		return true, false, false
	case isSimpleMotion(c0):
		return true, false, false
	case c0 == 'i':
		return len(acc) == 2, len(acc) < 2, false
	case c0 == 't' || c0 == 'T' || c0 == 'f' || c0 == 'F':
		return len(acc) == 2, len(acc) < 2, false
	default:
		return false, false, true
	}
}

func isSimpleMotion(b byte) bool {
	switch b {
	case 'w', 'W', 'b', 'B', 'e', 'E', '$', '0':
		return true
	}
	return false
}

// insidePairs maps every inside-pair character (opener, closer, or quote/
// comma/space) to the matched opener/closer pair it belongs to, mirroring
// spec.md §4.5's `()[]{}<> '' "" ,,` set.
var insidePairs = map[byte][2]byte{
	'(': {'(', ')'}, ')': {'(', ')'},
	'[': {'[', ']'}, ']': {'[', ']'},
	'{': {'{', '}'}, '}': {'{', '}'},
	'<': {'<', '>'}, '>': {'<', '>'},
	'\'': {'\'', '\''},
	'"':  {'"', '"'},
	',':  {',', ','},
	' ':  {' ', ' '},
}

// motionRange computes the [start, end) byte range a completed d/c/y
// motion spans (the whole line for dd/cc/yy); ok is false when the
// motion has no target.
func motionRange(op byte, acc []byte, buf *line.Buffer) (start, end int, ok bool) {
	s := buf.Bytes()
	pos := buf.Pos()

	c0 := acc[0]
	switch {
	case c0 == op:
		return 0, len(s), true

	case c0 == 'i':
		return insideRange(s, pos, acc[1])

	case c0 == 't' || c0 == 'f':
		target := findTill(s, pos, c0, acc[1], false)
		if target < 0 || target >= len(s) {
			return 0, 0, false
		}
		// Forward find/till motions are inclusive of the landing character.
		return rangeFromTarget(pos, target+1)

	case c0 == 'T' || c0 == 'F':
		target := findTill(s, pos, c0, acc[1], true)
		if target < 0 {
			return 0, 0, false
		}
		// Backward find/till motions are inclusive of the cursor's own
		// character, mirroring the forward branch's target+1 treatment.
		return rangeFromTarget(pos+1, target)

	case c0 == 'w' || c0 == 'W':
		target := classify.VimWord(s, pos, c0 == 'W')
		return rangeFromTarget(pos, target)

	case c0 == 'b' || c0 == 'B':
		var target int
		if c0 == 'B' {
			target = classify.VimWordBeginCapital(s, pos)
		} else {
			target = classify.VimWordBegin(s, pos)
		}
		if target < 0 {
			return 0, 0, false
		}
		return rangeFromTarget(pos, target)

	case c0 == 'e' || c0 == 'E':
		target := classify.VimWordEnd(s, pos, c0 == 'E')
		return rangeFromTarget(pos, target+1) // motion ranges are exclusive of the end char

	case c0 == '$':
		return pos, len(s), true

	case c0 == '0':
		return 0, pos, true
	}

	return 0, 0, false
}

func rangeFromTarget(pos, target int) (int, int, bool) {
	if target < 0 {
		return 0, 0, false
	}
	if target < pos {
		return target, pos, true
	}
	return pos, target, true
}

func findTill(s []byte, pos int, kind, ch byte, backward bool) int {
	switch kind {
	case 't', 'T':
		return classify.VimTill(s, pos, ch, backward)
	default:
		return classify.VimFind(s, pos, ch, backward)
	}
}

func insideRange(s []byte, pos int, x byte) (start, end int, ok bool) {
	if x == 'w' || x == 'W' {
		a, b := classify.VimWordBoundary(s, pos, x == 'W')
		if a < 0 || b < 0 {
			return 0, 0, false
		}
		return a, b, true
	}

	pair, known := insidePairs[x]
	if !known {
		return 0, 0, false
	}

	if pair[0] == pair[1] {
		return insideSymmetric(s, pos, pair[0])
	}
	return insideBracket(s, pos, pair[0], pair[1])
}

func insideSymmetric(s []byte, pos int, delim byte) (start, end int, ok bool) {
	left := -1
	for i := pos; i >= 0; i-- {
		if i < len(s) && s[i] == delim {
			left = i
			break
		}
	}
	if left < 0 {
		return 0, 0, false
	}

	right := -1
	for i := left + 1; i < len(s); i++ {
		if s[i] == delim {
			right = i
			break
		}
	}
	if right < 0 {
		return 0, 0, false
	}

	return left + 1, right, true
}

func insideBracket(s []byte, pos int, open, close byte) (start, end int, ok bool) {
	cursorChar := byte(0)
	if pos < len(s) {
		cursorChar = s[pos]
	}

	var openPos int
	switch cursorChar {
	case open:
		openPos = pos
	case close:
		openPos = classify.VimPair(s, pos)
	default:
		openPos = nearestUnmatchedOpen(s, pos, open, close)
	}
	if openPos < 0 {
		return 0, 0, false
	}

	closePos := classify.VimPair(s, openPos)
	if closePos < 0 || closePos <= openPos {
		return 0, 0, false
	}

	return openPos + 1, closePos, true
}

func nearestUnmatchedOpen(s []byte, pos int, open, close byte) int {
	depth := 0
	for i := pos - 1; i >= 0; i-- {
		switch s[i] {
		case close:
			depth++
		case open:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// Result is the output of executing one completed command: the bytes to
// send downstream, and the side-ops for the controller to apply.
type Result struct {
	Ops     []byte
	SideOps []SideOp
}

// Exec runs the completed command cmd (cmd[0] is the leading byte, the
// rest is its accumulated argument) against buf and cb, returning the
// outgoing bytes and side-ops.
func Exec(cmd []byte, buf *line.Buffer, cb *clipboard.Clipboard) Result {
	if len(cmd) == 0 {
		return Result{}
	}

	lead := cmd[0]
	arg := cmd[1:]

	switch lead {
	case 'f', 't', 'F', 'T':
		if len(arg) == 0 {
			return Result{}
		}
		target := findTill(buf.Bytes(), buf.Pos(), lead, arg[0], lead == 'F' || lead == 'T')
		if target < 0 || target >= buf.Len() {
			return Result{}
		}
		return Result{Ops: buf.MoveCursorVim(target)}
	case 'd', 'c', 'y':
		return execMotionOp(lead, arg, buf, cb)
	case 'x':
		return execDeleteRange(buf, cb, buf.Pos(), min(buf.Pos()+1, buf.Len()))
	case 's':
		r := execDeleteRange(buf, cb, buf.Pos(), min(buf.Pos()+1, buf.Len()))
		r.SideOps = append(r.SideOps, SideOp{Kind: SideModeChange, Mode: Insert})
		return r
	case 'i':
		return Result{SideOps: []SideOp{{Kind: SideModeChange, Mode: Insert}}}
	case 'I':
		return Result{Ops: buf.MoveLeft(buf.Pos()), SideOps: []SideOp{{Kind: SideModeChange, Mode: Insert}}}
	case 'a':
		ops := buf.MoveRight(min(1, buf.Len()-buf.Pos()))
		return Result{Ops: ops, SideOps: []SideOp{{Kind: SideModeChange, Mode: Insert}}}
	case 'A':
		ops := buf.MoveRight(buf.Len() - buf.Pos())
		return Result{Ops: ops, SideOps: []SideOp{{Kind: SideModeChange, Mode: Insert}}}
	case 'r':
		return execReplaceChar(buf, arg)
	case 'R':
		return Result{SideOps: []SideOp{{Kind: SideModeChange, Mode: Replace}}}
	case 'p':
		return execPaste(buf, cb, true)
	case 'P':
		return execPaste(buf, cb, false)
	case '~':
		return execToggleCase(buf)
	case '/':
		return Result{SideOps: []SideOp{{Kind: SideHistorySearchStart, Pattern: string(trimTerminator(arg))}}}
	case '?':
		return Result{SideOps: []SideOp{{Kind: SideHistorySearchStart, Pattern: "?" + string(trimTerminator(arg))}}}
	case 'n':
		return Result{SideOps: []SideOp{{Kind: SideHistorySearchNext}}}
	case 'N':
		return Result{SideOps: []SideOp{{Kind: SideHistorySearchPrev}}}
	case 'm':
		if len(arg) == 0 {
			return Result{}
		}
		return Result{SideOps: []SideOp{{Kind: SideMarkSet, Letter: arg[0]}}}
	case '`':
		if len(arg) == 0 {
			return Result{}
		}
		return Result{SideOps: []SideOp{{Kind: SideMarkRetrieve, Letter: arg[0]}}}
	}

	return Result{}
}

func trimTerminator(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func execMotionOp(op byte, acc []byte, buf *line.Buffer, cb *clipboard.Clipboard) Result {
	start, end, ok := motionRange(op, acc, buf)
	if !ok {
		return Result{}
	}

	switch op {
	case 'y':
		cb.Copy(buf.Peek(start, end))
		return Result{}
	case 'd':
		return execDeleteRange(buf, cb, start, end)
	case 'c':
		r := execDeleteRange(buf, cb, start, end)
		r.SideOps = append(r.SideOps, SideOp{Kind: SideModeChange, Mode: Insert})
		return r
	}

	return Result{}
}

// execDeleteRange implements spec.md §4.5's deletion semantics: move the
// cursor to the range's right end first (emitting RIGHT for a forward
// motion; a no-op for a backward motion, where the cursor is already
// there), then delete the range backward (emitting DELETE). Removed
// bytes are copied to the clipboard either way.
func execDeleteRange(buf *line.Buffer, cb *clipboard.Clipboard, start, end int) Result {
	if start >= end {
		return Result{}
	}

	var ops []byte
	switch {
	case buf.Pos() < end:
		ops = append(ops, buf.MoveRight(end-buf.Pos())...)
	case buf.Pos() > end:
		ops = append(ops, buf.MoveLeft(buf.Pos()-end)...)
	}

	cut := buf.Cut(start, end)
	cb.Copy(cut)
	ops = append(ops, line.DeleteSeq(len(cut))...)

	return Result{Ops: ops}
}

func execReplaceChar(buf *line.Buffer, arg []byte) Result {
	if len(arg) == 0 || buf.Pos() >= buf.Len() {
		return Result{}
	}
	ch := arg[0]
	if ch == '\n' || ch == '\r' {
		return Result{}
	}

	pos := buf.Pos()
	ops := buf.MoveRight(1)
	buf.Cut(pos, pos+1)
	ops = append(ops, line.DeleteSeq(1)...)
	ops = append(ops, buf.InsertAt(pos, []byte{ch})...)
	ops = append(ops, buf.MoveLeft(1)...) // replacing leaves the cursor in place, not past the replaced char
	return Result{Ops: ops}
}

func execPaste(buf *line.Buffer, cb *clipboard.Clipboard, after bool) Result {
	data := cb.Paste()
	if len(data) == 0 {
		return Result{}
	}

	pos := buf.Pos()
	insertAt := pos
	var ops []byte
	if after && buf.Len() > 0 {
		ops = append(ops, buf.MoveRight(1)...)
		insertAt = buf.Pos()
	}

	ops = append(ops, buf.InsertAt(insertAt, data)...)
	return Result{Ops: ops}
}

func execToggleCase(buf *line.Buffer) Result {
	pos := buf.Pos()
	if pos >= buf.Len() {
		return Result{}
	}

	ch := buf.Bytes()[pos]
	r := rune(ch)
	if !unicode.IsLetter(r) {
		return Result{}
	}

	toggled := unicode.ToLower(r)
	if unicode.IsLower(r) {
		toggled = unicode.ToUpper(r)
	}

	ops := buf.MoveRight(1)
	buf.Cut(pos, pos+1)
	ops = append(ops, line.DeleteSeq(1)...)
	ops = append(ops, buf.InsertAt(pos, []byte(string(toggled)))...)
	return Result{Ops: ops}
}
