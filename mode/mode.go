// Package mode implements the editor controller: the Normal/Insert/
// Replace mode state, the Normal-mode command-accumulation grammar, and
// the undo/redo and repeat infrastructure that sits above the action
// catalog.
//
// Grounded on the teacher's vim.go mode-transition trio (viInsertMode,
// viCommandMode, viReplace) for the mode-switch and cursor-shape-escape
// discipline, generalized down to the three modes spec.md allows (no
// visual mode, no iterations/selection state — those are Non-goals).
package mode

import (
	"github.com/shuheng-liu/iridescent/action"
	"github.com/shuheng-liu/iridescent/clipboard"
	"github.com/shuheng-liu/iridescent/line"
)

// Cursor-shape escapes emitted on mode transitions (spec.md §4.6).
const (
	CursorNormal  = "\x1b[2 q"
	CursorInsert  = "\x1b[5 q"
	CursorReplace = "\x1b[3 q"
)

// HistoryAccessor is the narrow view of the history store the controller
// needs to drive NavigateHistoryOp and mark/search side-ops. The
// controller holds this as a non-owning handle; the Engine owns the real
// *history.Store (spec.md §9's cyclic-reference resolution).
type HistoryAccessor interface {
	GoPrev() string
	GoNext() string
	StartSearch(pattern string) error
	SearchNext() (string, bool)
	SearchPrev() (string, bool)
	SetMark(letter byte)
	RetrieveMark(letter byte) (string, bool)
	SkipNextBuffers(n int)
}

type snapshot struct {
	content []byte
	pos     int
}

// Controller is the editor's modal state machine: current mode, the
// in-progress Normal-mode command accumulator, and the undo/redo/repeat
// stacks that sit above individual actions.
type Controller struct {
	m       action.Mode
	acc     []byte
	hist    HistoryAccessor
	lastDir bool // true if the last history search was backward ('?'), for n/N direction flip

	undo []snapshot
	redo []snapshot

	lastCmd        []byte
	lastRepeatable bool
}

// New returns a controller starting in Normal mode.
func New(hist HistoryAccessor) *Controller {
	return &Controller{m: action.Normal, hist: hist}
}

// Mode returns the current editor mode.
func (c *Controller) Mode() action.Mode { return c.m }

// Pending reports whether a Normal-mode command is mid-accumulation (e.g.
// right after 'd', awaiting its motion). While pending, the dispatcher
// must route every subsequent key into NormalBuffer rather than treating
// it as a bare navigation key, even for bytes like 'w' that are also
// standalone motions (spec.md §4.7 priority 10 vs. 12).
func (c *Controller) Pending() bool { return len(c.acc) > 0 }

// ResetAccumulator discards a partial Normal-mode command without firing
// it, per spec.md §4.5/§4.7's "invalid prefixes reset the buffers and
// return empty output".
func (c *Controller) ResetAccumulator() { c.acc = c.acc[:0] }

// SetNormal switches to Normal mode, clears the accumulators, clears the
// redo stack, and returns the cursor-shape escape.
func (c *Controller) SetNormal() []byte {
	c.m = action.Normal
	c.acc = c.acc[:0]
	c.redo = c.redo[:0]
	return []byte(CursorNormal)
}

// SetInsert switches to Insert mode, clears the accumulators, and returns
// the cursor-shape escape.
func (c *Controller) SetInsert() []byte {
	c.m = action.Insert
	c.acc = c.acc[:0]
	return []byte(CursorInsert)
}

// SetReplace switches to Replace mode, clears the accumulators, and
// returns the cursor-shape escape.
func (c *Controller) SetReplace() []byte {
	c.m = action.Replace
	c.acc = c.acc[:0]
	return []byte(CursorReplace)
}

// Outcome is the product of one Normal-mode keystroke: the bytes to send
// downstream, and whether a command actually completed this keystroke
// (false means the accumulator is still filling and nothing should be
// sent).
type Outcome struct {
	Ops     []byte
	Fired   bool
	Invalid bool
}

// NormalBuffer runs the grammar state machine of spec.md §4.5 against key,
// mutating buf and cb as the completed command dictates, and returns the
// outgoing bytes.
func (c *Controller) NormalBuffer(key byte, buf *line.Buffer, cb *clipboard.Clipboard) Outcome {
	c.acc = append(c.acc, key)

	lead := c.acc[0]
	spec, known := action.Lookup(lead)
	if !known {
		c.acc = c.acc[:0]
		return Outcome{Invalid: true}
	}

	var complete bool
	switch {
	case spec.IsMotionOp:
		done, needMore, invalid := action.MotionComplete(lead, c.acc[1:])
		if invalid {
			c.acc = c.acc[:0]
			return Outcome{Invalid: true}
		}
		complete = done && !needMore
	case spec.NArgs == 0:
		complete = true
	case spec.NArgs == 1:
		complete = len(c.acc) == 2
	default: // variadic
		complete = action.IsTerminator(spec.Terminators, key)
	}

	if !complete {
		return Outcome{}
	}

	cmd := append([]byte(nil), c.acc...)
	c.acc = c.acc[:0]

	return c.fire(cmd, spec, buf, cb, true)
}

// fire executes a fully-accumulated command, snapshotting for undo first
// when required, applying side-ops, and recording the repeat slot.
func (c *Controller) fire(cmd []byte, spec action.Spec, buf *line.Buffer, cb *clipboard.Clipboard, recordRepeat bool) Outcome {
	if spec.Undoable {
		c.pushUndo(buf)
	}
	if !spec.PreserveRedo {
		c.redo = c.redo[:0]
	}

	result := action.Exec(cmd, buf, cb)
	ops := append([]byte(nil), result.Ops...)

	for _, so := range result.SideOps {
		ops = c.applySideOp(so, ops, buf)
	}

	if c.m == action.Normal {
		ops = append(ops, buf.ClampNormal()...)
	}

	if recordRepeat && spec.Repeatable {
		c.lastCmd = cmd
		c.lastRepeatable = true
	}

	return Outcome{Ops: ops, Fired: true}
}

func (c *Controller) applySideOp(so action.SideOp, ops []byte, buf *line.Buffer) []byte {
	switch so.Kind {
	case action.SideModeChange:
		switch so.Mode {
		case action.Insert:
			ops = append(ops, c.SetInsert()...)
		case action.Replace:
			ops = append(ops, c.SetReplace()...)
		case action.Normal:
			ops = append(ops, c.SetNormal()...)
		}
	case action.SideHistorySearchStart:
		pattern := so.Pattern
		backward := false
		if len(pattern) > 0 && pattern[0] == '?' {
			backward = true
			pattern = pattern[1:]
		}
		c.lastDir = backward
		if c.hist == nil {
			return ops
		}
		if err := c.hist.StartSearch(pattern); err != nil {
			return ops
		}
		var hit string
		var ok bool
		if backward {
			hit, ok = c.hist.SearchPrev()
		} else {
			hit, ok = c.hist.SearchNext()
		}
		return appendHistoryLine(c.hist, ops, buf, hit, ok)
	case action.SideHistorySearchNext:
		if c.hist == nil {
			return ops
		}
		fwd := !c.lastDir
		var hit string
		var ok bool
		if fwd {
			hit, ok = c.hist.SearchNext()
		} else {
			hit, ok = c.hist.SearchPrev()
		}
		return appendHistoryLine(c.hist, ops, buf, hit, ok)
	case action.SideHistorySearchPrev:
		if c.hist == nil {
			return ops
		}
		fwd := c.lastDir
		var hit string
		var ok bool
		if fwd {
			hit, ok = c.hist.SearchNext()
		} else {
			hit, ok = c.hist.SearchPrev()
		}
		return appendHistoryLine(c.hist, ops, buf, hit, ok)
	case action.SideHistoryGoPrev:
		if c.hist == nil {
			return ops
		}
		return appendHistoryLine(c.hist, ops, buf, c.hist.GoPrev(), true)
	case action.SideHistoryGoNext:
		if c.hist == nil {
			return ops
		}
		return appendHistoryLine(c.hist, ops, buf, c.hist.GoNext(), true)
	case action.SideMarkSet:
		if c.hist != nil {
			c.hist.SetMark(so.Letter)
		}
	case action.SideMarkRetrieve:
		if c.hist == nil {
			return ops
		}
		line, ok := c.hist.RetrieveMark(so.Letter)
		return appendHistoryLine(c.hist, ops, buf, line, ok)
	}
	return ops
}

// appendHistoryLine implements NavigateHistoryOp: on a hit, replace the
// line and append the delta as outgoing bytes; on a miss, ops is returned
// unchanged so nothing is cleared or altered (spec.md §7's "missing
// history hit" edge case).
func appendHistoryLine(hist HistoryAccessor, ops []byte, buf *line.Buffer, newLine string, ok bool) []byte {
	if !ok {
		return ops
	}
	if hist != nil {
		hist.SkipNextBuffers(1)
	}

	right := buf.MoveRight(buf.Len() - buf.Pos())
	cut := buf.Cut(0, buf.Len())
	ins := buf.InsertAt(0, []byte(newLine))

	ops = append(ops, right...)
	ops = append(ops, line.DeleteSeq(len(cut))...)
	ops = append(ops, ins...)

	return ops
}

// NavigateHistory applies a raw Up/Down history move (bound directly to
// the arrow keys in Insert/Normal/Replace, per spec.md §4.7's dispatcher
// priority list, rather than through the Normal-mode grammar).
func (c *Controller) NavigateHistory(buf *line.Buffer, forward bool) []byte {
	if c.hist == nil {
		return nil
	}

	var newLine string
	if forward {
		newLine = c.hist.GoNext()
	} else {
		newLine = c.hist.GoPrev()
	}

	return appendHistoryLine(c.hist, nil, buf, newLine, true)
}

// Repeat replays the last repeatable command with its stored argument
// ('.' is itself never repeatable, and a no-op when nothing qualifies
// yet).
func (c *Controller) Repeat(buf *line.Buffer, cb *clipboard.Clipboard) Outcome {
	if !c.lastRepeatable || len(c.lastCmd) == 0 {
		return Outcome{}
	}

	spec, ok := action.Lookup(c.lastCmd[0])
	if !ok {
		return Outcome{}
	}

	return c.fire(append([]byte(nil), c.lastCmd...), spec, buf, cb, false)
}

func (c *Controller) pushUndo(buf *line.Buffer) {
	content, pos := buf.Clone()
	c.undo = append(c.undo, snapshot{content: content, pos: pos})
}

// Undo restores the most recent undo snapshot, pushing the pre-undo state
// onto the redo stack, and preserves the redo stack beyond that (undo
// itself never clears redo, per spec.md §4.5).
func (c *Controller) Undo(buf *line.Buffer) []byte {
	if len(c.undo) == 0 {
		return nil
	}

	n := len(c.undo) - 1
	snap := c.undo[n]
	c.undo = c.undo[:n]

	content, pos := buf.Clone()
	c.redo = append(c.redo, snapshot{content: content, pos: pos})

	return c.restore(buf, snap)
}

// Redo restores the most recently undone snapshot.
func (c *Controller) Redo(buf *line.Buffer) []byte {
	if len(c.redo) == 0 {
		return nil
	}

	n := len(c.redo) - 1
	snap := c.redo[n]
	c.redo = c.redo[:n]

	content, pos := buf.Clone()
	c.undo = append(c.undo, snapshot{content: content, pos: pos})

	return c.restore(buf, snap)
}

func (c *Controller) restore(buf *line.Buffer, snap snapshot) []byte {
	right := buf.MoveRight(buf.Len() - buf.Pos())
	cut := buf.Cut(0, buf.Len())
	ins := buf.InsertAt(0, snap.content)

	ops := append([]byte(nil), right...)
	ops = append(ops, line.DeleteSeq(len(cut))...)
	ops = append(ops, ins...)
	ops = append(ops, buf.MoveCursorVim(snap.pos)...)

	return ops
}
