package pegvm

import (
	"fmt"
	"io"
	"strings"
)

// eventKind is the trace line's leading marker (§4.5).
type eventKind byte

const (
	evTry     eventKind = '?'
	evGot     eventKind = '+'
	evNot     eventKind = 'x'
	evCoGot   eventKind = '='
	evCoNot   eventKind = '!'
)

type traceLine struct {
	kind  eventKind
	lvl   int
	call  string
	pos   int
	tail  string
}

func (l traceLine) key() (eventKind, int, string) {
	k := l.kind
	if k == evCoGot || k == evCoNot {
		k = evTry
	}
	return k, l.lvl, l.call
}

// tracer is the Trace Recorder (§4.5): a one-slot lookahead buffer that
// coalesces a pending '?' line into '=' or '!' once its matching '+'/'x'
// arrives, and formats a fixed-width diagnostic line on flush.
type tracer struct {
	enabled    bool
	out        io.Writer
	quiet      map[string]bool
	quietDepth map[string]int
	lineNo     int

	pending    *traceLine
	hasPending bool
}

func newTracer(enabled bool, out io.Writer, quiet map[string]bool) *tracer {
	return &tracer{
		enabled:    enabled,
		out:        out,
		quiet:      quiet,
		quietDepth: map[string]int{},
	}
}

func (t *tracer) quiescent() bool {
	for _, d := range t.quietDepth {
		if d > 0 {
			return true
		}
	}
	return false
}

// event records one call-lifecycle event for the frame at the top of the
// given parser's stack, formatting and coalescing it per §4.5.
func (t *tracer) event(kind eventKind, f *Frame, p *Parser) {
	if t == nil || !t.enabled {
		return
	}
	if t.quiet != nil && t.quiet[f.name] {
		switch kind {
		case evTry:
			t.quietDepth[f.name]++
		case evGot, evNot:
			t.quietDepth[f.name]--
		}
		return
	}
	if t.quiescent() {
		return
	}

	call := f.Label()
	line := traceLine{
		kind: kind,
		lvl:  f.lvl,
		call: call,
		pos:  p.pos,
		tail: escapeTail(p.tailFrom(p.pos, 24)),
	}
	t.push(line)
}

func (t *tracer) push(line traceLine) {
	if t.hasPending {
		pk, pl, pc := t.pending.key()
		_, ll, lc := line.key()
		if pk == evTry && t.pending.kind == evTry && pl == ll && pc == lc {
			if line.kind == evGot {
				t.pending.kind = evCoGot
				t.flushPending()
				return
			}
			if line.kind == evNot {
				t.pending.kind = evCoNot
				t.flushPending()
				return
			}
		}
		t.flushPending()
	}
	cp := line
	t.pending = &cp
	t.hasPending = true
}

func (t *tracer) flushPending() {
	if !t.hasPending {
		return
	}
	t.lineNo++
	fmt.Fprintln(t.out, formatLine(t.lineNo, *t.pending))
	t.hasPending = false
	t.pending = nil
}

// flush emits any residual buffered line; called at end of parse and
// before a fatal error surfaces (§7: "A fatal error flushes the pending
// trace line before surfacing").
func (t *tracer) flush() {
	if t == nil {
		return
	}
	t.flushPending()
}

func formatLine(lineNo int, l traceLine) string {
	indent := strings.Repeat(" ", l.lvl)
	lvlStr := fmt.Sprintf("%d", l.lvl)
	if l.lvl > 0 && len(lvlStr) <= len(indent) {
		indent = lvlStr + indent[len(lvlStr):]
	}
	call := fmt.Sprintf("%-30s", truncate(l.call, 30))
	return fmt.Sprintf("%3d %s%c %s %4d '%s'", lineNo, indent, l.kind, call, l.pos, l.tail)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func escapeTail(s string) string {
	r := strings.NewReplacer(
		"\t", `\t`,
		"\r", `\r`,
		"\n", `\n`,
	)
	return r.Replace(s)
}
