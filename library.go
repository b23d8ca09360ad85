package pegvm

import "fmt"

// This file is the Combinator Library (§4.2): the fixed set of primitive
// combinators every grammar is built from, plus the terminals the engine
// provides directly.

func argsToCombinators(args []any) []*Combinator {
	out := make([]*Combinator, len(args))
	for i, a := range args {
		out[i] = asCombinator(a)
	}
	return out
}

func asCombinator(a any) *Combinator {
	c, _ := a.(*Combinator)
	return c
}

func combArgs(cs []*Combinator) []any {
	out := make([]any, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case rune:
		return int(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// All succeeds iff every child succeeds in order, consuming input
// cumulatively; on any failure it resets pos to entry and fails.
func All(children ...*Combinator) *Combinator {
	head := NewRule("all", TypeBoolean, func(p *Parser, args []any) (any, error) {
		kids := argsToCombinators(args)
		if len(kids) == 0 {
			return nil, p.fatal(ErrMissingChild, "all")
		}
		entry := p.pos
		for _, kid := range kids {
			if kid == nil {
				return nil, p.fatal(ErrMissingChild, "all")
			}
			result, err := p.call(kid, TypeBoolean)
			if err != nil {
				return nil, err
			}
			if !result.(bool) {
				p.pos = entry
				return false, nil
			}
		}
		return true, nil
	})
	return NewApply("all", head, combArgs(children)...)
}

// Any tries children in order; the first success wins. If all children
// fail, Any fails without resetting pos — children own their own
// rollback (§4.2, §9 Open Questions).
func Any(children ...*Combinator) *Combinator {
	head := NewRule("any", TypeBoolean, func(p *Parser, args []any) (any, error) {
		kids := argsToCombinators(args)
		if len(kids) == 0 {
			return nil, p.fatal(ErrMissingChild, "any")
		}
		for _, kid := range kids {
			if kid == nil {
				return nil, p.fatal(ErrMissingChild, "any")
			}
			result, err := p.call(kid, TypeBoolean)
			if err != nil {
				return nil, err
			}
			if result.(bool) {
				return true, nil
			}
		}
		return false, nil
	})
	return NewApply("any", head, combArgs(children)...)
}

// Rep repeats child while pos < len and child succeeds. min/max may be
// plain ints, *Combinator (resolved with expected_type='any'), or a
// Thunk — supporting grammars that compute bounds dynamically via
// Add/Sub. max == 0 means unbounded.
func Rep(min, max any, child *Combinator) *Combinator {
	name := fmt.Sprintf("rep_%v_%v", min, max)
	head := NewRule("rep", TypeBoolean, func(p *Parser, args []any) (any, error) {
		minV, err := p.resolveValue(args[0])
		if err != nil {
			return nil, err
		}
		maxV, err := p.resolveValue(args[1])
		if err != nil {
			return nil, err
		}
		minN, ok := toInt(minV)
		if !ok {
			return nil, p.fatalf(ErrTypeMismatch, "rep", "non-integer min %v", minV)
		}
		maxN, ok := toInt(maxV)
		if !ok {
			return nil, p.fatalf(ErrTypeMismatch, "rep", "non-integer max %v", maxV)
		}
		kid := asCombinator(args[2])
		if kid == nil {
			return nil, p.fatal(ErrMissingChild, "rep")
		}

		entry := p.pos
		count := 0
		for p.pos < len(p.input) {
			before := p.pos
			result, err := p.call(kid, TypeBoolean)
			if err != nil {
				return nil, err
			}
			if !result.(bool) {
				break
			}
			count++
			if minN == 0 && p.pos == before {
				return true, nil
			}
			if maxN != 0 && count >= maxN {
				break
			}
		}
		if count >= minN && (maxN == 0 || count <= maxN) {
			return true, nil
		}
		p.pos = entry
		return false, nil
	})
	a := NewApply(name, head, min, max, child)
	a.TraceLabel = fmt.Sprintf("rep(%v,%v)", min, max)
	return a
}

// Chr matches a single literal character.
func Chr(c rune) *Combinator {
	name := fmt.Sprintf("chr_%x", c)
	head := NewRule("chr", TypeBoolean, func(p *Parser, args []any) (any, error) {
		want := args[0].(rune)
		got, ok := p.runeAt(p.pos)
		if ok && got == want {
			p.pos++
			return true, nil
		}
		return false, nil
	})
	a := NewApply(name, head, c)
	a.TraceLabel = fmt.Sprintf("chr(0x%x)", c)
	return a
}

// Rng matches a single character in the inclusive range [lo, hi].
func Rng(lo, hi rune) *Combinator {
	name := fmt.Sprintf("rng_%x_%x", lo, hi)
	head := NewRule("rng", TypeBoolean, func(p *Parser, args []any) (any, error) {
		l := args[0].(rune)
		h := args[1].(rune)
		got, ok := p.runeAt(p.pos)
		if ok && got >= l && got <= h {
			p.pos++
			return true, nil
		}
		return false, nil
	})
	a := NewApply(name, head, lo, hi)
	a.TraceLabel = fmt.Sprintf("rng(0x%x,0x%x)", lo, hi)
	return a
}

// But succeeds iff f0 succeeds and none of negatives would succeed
// starting at the same entry position.
func But(f0 *Combinator, negatives ...*Combinator) *Combinator {
	all := append([]*Combinator{f0}, negatives...)
	head := NewRule("but", TypeBoolean, func(p *Parser, args []any) (any, error) {
		kids := argsToCombinators(args)
		if len(kids) == 0 || kids[0] == nil {
			return nil, p.fatal(ErrMissingChild, "but")
		}
		entry := p.pos
		result, err := p.call(kids[0], TypeBoolean)
		if err != nil {
			return nil, err
		}
		if !result.(bool) {
			p.pos = entry
			return false, nil
		}
		pos2 := p.pos
		for _, neg := range kids[1:] {
			if neg == nil {
				return nil, p.fatal(ErrMissingChild, "but")
			}
			p.pos = entry
			nres, err := p.call(neg, TypeBoolean)
			if err != nil {
				return nil, err
			}
			p.pos = entry
			if nres.(bool) {
				return false, nil
			}
		}
		p.pos = pos2
		return true, nil
	})
	return NewApply("but", head, combArgs(all)...)
}

// chkKind is the discriminant of a Chk assertion.
type chkKind string

const (
	ChkEqual     chkKind = "="
	ChkNot       chkKind = "!"
	ChkLookbehind chkKind = "<="
)

// Chk is a zero-width assertion: '=' (positive lookahead), '!' (negative
// lookahead), or '<=' (one-character lookbehind; the caller must ensure
// pos > 0, see DESIGN.md Open Question 4).
func Chk(kind chkKind, expr *Combinator) *Combinator {
	if kind != ChkEqual && kind != ChkNot && kind != ChkLookbehind {
		return NewApply("chk_bad", NewRule("chk", TypeBoolean, func(p *Parser, args []any) (any, error) {
			return nil, p.fatalf(ErrBadCallTarget, "chk", "unknown kind %q", kind)
		}))
	}
	name := "chk_" + map[chkKind]string{ChkEqual: "eq", ChkNot: "not", ChkLookbehind: "behind"}[kind]
	head := NewRule("chk", TypeBoolean, func(p *Parser, args []any) (any, error) {
		e := asCombinator(args[0])
		if e == nil {
			return nil, p.fatal(ErrMissingChild, "chk")
		}
		entry := p.pos
		if kind == ChkLookbehind {
			p.pos = entry - 1
		}
		result, err := p.call(e, TypeBoolean)
		p.pos = entry
		if err != nil {
			return nil, err
		}
		ok := result.(bool)
		if kind == ChkNot {
			ok = !ok
		}
		return ok, nil
	})
	return NewApply(name, head, expr)
}

// Case looks up state().m[varName] in table to obtain a rule, then calls
// it. A missing key is fatal. Reads the ENCLOSING rule's frame, not its
// own (DESIGN.md Open Question 6), matching Set's write target.
func Case(varName string, table map[string]*Combinator) *Combinator {
	name := "case_" + varName
	head := NewRule("case", TypeBoolean, func(p *Parser, args []any) (any, error) {
		v, _ := p.callerFrame().Get(varName)
		key := fmt.Sprint(v)
		rule, ok := table[key]
		if !ok {
			return nil, p.fatalf(ErrMissingKey, name, "unbound case key %q for %q", key, varName)
		}
		result, err := p.call(rule, TypeBoolean)
		if err != nil {
			return nil, err
		}
		return result.(bool), nil
	})
	return NewApply(name, head)
}

// Flip is like Case, but a non-combinator table entry is returned
// directly as an 'any'-typed value instead of being called.
func Flip(varName string, table map[string]any) *Combinator {
	name := "flip_" + varName
	head := NewRule("flip", TypeAny, func(p *Parser, args []any) (any, error) {
		v, _ := p.callerFrame().Get(varName)
		key := fmt.Sprint(v)
		val, ok := table[key]
		if !ok {
			return nil, p.fatalf(ErrMissingKey, name, "unbound flip key %q for %q", key, varName)
		}
		if c, isComb := val.(*Combinator); isComb {
			return p.call(c, TypeAny)
		}
		return val, nil
	})
	return NewApply(name, head)
}

// Set evaluates expr (expected_type='any') and stores it into the
// ENCLOSING rule's frame under varName, visible to any sibling called
// later in that rule's body. Always succeeds.
func Set(varName string, expr *Combinator) *Combinator {
	name := "set_" + varName
	head := NewRule("set", TypeBoolean, func(p *Parser, args []any) (any, error) {
		val, err := p.resolveValue(args[0])
		if err != nil {
			return nil, err
		}
		p.callerFrame().Set(varName, val)
		return true, nil
	})
	return NewApply(name, head, expr)
}

// Add returns x+y as an 'any'-typed value; operands may be ints,
// *Combinator, or a Thunk.
func Add(x, y any) *Combinator {
	return arith("add", x, y, func(a, b int) int { return a + b })
}

// Sub returns x-y as an 'any'-typed value.
func Sub(x, y any) *Combinator {
	return arith("sub", x, y, func(a, b int) int { return a - b })
}

func arith(name string, x, y any, op func(a, b int) int) *Combinator {
	head := NewRule(name, TypeAny, func(p *Parser, args []any) (any, error) {
		xv, err := p.resolveValue(args[0])
		if err != nil {
			return nil, err
		}
		yv, err := p.resolveValue(args[1])
		if err != nil {
			return nil, err
		}
		xi, ok := toInt(xv)
		if !ok {
			return nil, p.fatalf(ErrTypeMismatch, name, "non-integer operand %v", xv)
		}
		yi, ok := toInt(yv)
		if !ok {
			return nil, p.fatalf(ErrTypeMismatch, name, "non-integer operand %v", yv)
		}
		return op(xi, yi), nil
	})
	return NewApply(name, head, x, y)
}

// MaxN and Exclude are reserved no-ops: semantic placeholders present in
// the grammar but not yet enforced by the engine (§4.2, §9 Open
// Questions). They always succeed.
func MaxN(n int) *Combinator {
	head := NewRule("max", TypeBoolean, func(p *Parser, args []any) (any, error) {
		return true, nil
	})
	return NewApply("max", head, n)
}

func Exclude(rule *Combinator) *Combinator {
	head := NewRule("exclude", TypeBoolean, func(p *Parser, args []any) (any, error) {
		if asCombinator(args[0]) == nil {
			return nil, p.fatal(ErrMissingChild, "exclude")
		}
		return true, nil
	})
	return NewApply("exclude", head, rule)
}

// StartOfLine is true iff pos == 0 or the preceding character is '\n'.
func StartOfLine() *Combinator {
	return NewRule("start_of_line", TypeBoolean, func(p *Parser, args []any) (any, error) {
		if p.pos == 0 {
			return true, nil
		}
		c, ok := p.runeAt(p.pos - 1)
		return ok && c == '\n', nil
	})
}

// EndOfStream is true iff pos >= len.
func EndOfStream() *Combinator {
	return NewRule("end_of_stream", TypeBoolean, func(p *Parser, args []any) (any, error) {
		return p.pos >= len(p.input), nil
	})
}

// Empty always succeeds and consumes nothing.
func Empty() *Combinator {
	return NewRule("empty", TypeBoolean, func(p *Parser, args []any) (any, error) {
		return true, nil
	})
}

// AutoDetectIndent is a placeholder that always returns 1 (§4.2).
func AutoDetectIndent() *Combinator {
	return NewRule("auto_detect_indent", TypeAny, func(p *Parser, args []any) (any, error) {
		return 1, nil
	})
}
