package pegvm

import "io"

// Grammar is the external collaborator that supplies the combinator tree
// (§1, §6). The concrete set of named rules is out of scope for this
// engine; it is consumed purely through this interface.
type Grammar interface {
	// LookupRule resolves a named production, for use by a Call-style
	// combinator inside a rule body.
	LookupRule(name string) (*Combinator, bool)
	// LookupTop returns the grammar's starting combinator.
	LookupTop() *Combinator
}

// Config is the optional, purely cosmetic configuration channel (§6).
type Config struct {
	// Trace enables the diagnostic trace stream.
	Trace bool
	// TraceOut receives formatted trace lines; defaults to io.Discard.
	TraceOut io.Writer
	// Quiet names rules whose subtree is trace-quiet.
	Quiet []string
	// LogFunc receives ad-hoc diagnostic messages (the message of each
	// fatal engine error), mirroring the teacher's injected callback.
	LogFunc func(format string, args ...any)
}

// Parser holds all per-parse state: one input, one cursor, one stack, one
// trace buffer, and one receiver reference (§5: single-threaded,
// strictly synchronous, no state shared across parses).
type Parser struct {
	input []rune
	pos   int

	stack    stack
	grammar  Grammar
	receiver any
	hooks    map[*Combinator]hookTriple
	trace    *tracer
	logFunc  func(format string, args ...any)
}

// NewParser builds a Parser over input, bound to the given grammar and
// receiver. receiver may be nil if no lifecycle events are needed. cfg
// may be nil to take all defaults (tracing off, no quiet rules).
func NewParser(input string, g Grammar, receiver any, cfg *Config) *Parser {
	if cfg == nil {
		cfg = &Config{}
	}
	out := cfg.TraceOut
	if out == nil {
		out = io.Discard
	}
	var quiet map[string]bool
	if len(cfg.Quiet) > 0 {
		quiet = make(map[string]bool, len(cfg.Quiet))
		for _, name := range cfg.Quiet {
			quiet[name] = true
		}
	}
	return &Parser{
		input:    []rune(input),
		grammar:  g,
		receiver: receiver,
		hooks:    make(map[*Combinator]hookTriple),
		trace:    newTracer(cfg.Trace, out, quiet),
		logFunc:  cfg.LogFunc,
	}
}

// Pos returns the parser's current cursor position.
func (p *Parser) Pos() int { return p.pos }

// Len returns the input length, in runes.
func (p *Parser) Len() int { return len(p.input) }

func (p *Parser) log(format string, args ...any) {
	if p.logFunc != nil {
		p.logFunc(format, args...)
	}
}

func (p *Parser) runeAt(pos int) (rune, bool) {
	if pos < 0 || pos >= len(p.input) {
		return 0, false
	}
	return p.input[pos], true
}

func (p *Parser) sliceFrom(start int) string {
	end := p.pos
	if start < 0 {
		start = 0
	}
	if end > len(p.input) {
		end = len(p.input)
	}
	if start > end {
		return ""
	}
	return string(p.input[start:end])
}

func (p *Parser) tailFrom(start, max int) string {
	end := start + max
	if end > len(p.input) {
		end = len(p.input)
	}
	if start < 0 || start > end {
		return ""
	}
	return string(p.input[start:end])
}

// callerFrame walks up the stack to the nearest enclosing Named frame —
// the grammar production whose body is actually running set/case/flip,
// however deeply nested under all/rep/any those calls are, and however
// many of those intermediate frames the trampoline absorbed (DefineRule's
// body, or a set/case/flip call that is itself a rule's entire literal
// body, never gets its own frame; see grammar.go's DefineRule and
// dispatcher.go's trampoline). So the walk must consider the current top
// frame itself, not just its ancestors — mirroring baseName's walk, which
// has the same requirement. Falls back to the synthetic root frame if no
// Named frame is on the stack at all. Used by set/case/flip to read and
// write the ENCLOSING RULE's local state rather than their own ephemeral
// frame (DESIGN.md Open Question 6).
func (p *Parser) callerFrame() *Frame {
	frames := p.stack.frames
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].named {
			return frames[i]
		}
	}
	return p.stack.rootFrame()
}

// Parse runs rule (or the grammar's top rule, if rule == "") against the
// whole input and reports success per §6/§7: the top rule must match AND
// consume the entire input, or a fatal error is returned.
func (p *Parser) Parse(rule string) (bool, error) {
	var target *Combinator
	if rule == "" {
		target = p.grammar.LookupTop()
		if target == nil {
			return false, p.fatal(ErrUnknownRule, "<top>")
		}
	} else {
		var ok bool
		target, ok = p.grammar.LookupRule(rule)
		if !ok {
			return false, p.fatal(ErrUnknownRule, rule)
		}
	}

	result, err := p.call(target, TypeBoolean)
	if err != nil {
		p.trace.flush()
		return false, err
	}
	ok := result.(bool)
	p.trace.flush()
	if !ok {
		return false, p.fatal(ErrParserFailed, target.Name)
	}
	if p.pos < len(p.input) {
		return false, p.fatal(ErrUnconsumedTail, target.Name)
	}
	return true, nil
}
