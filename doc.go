// Package pegvm implements the core interpreter of a grammar-driven,
// backtracking recursive-descent parser: a small virtual machine for a
// PEG-like grammar expressed as a tree of parsing combinators.
//
// A grammar is built from a fixed set of combinators:
//
//	all(f1, ..., fk)    sequence: all children must match in order
//	any(f1, ..., fk)    ordered choice: first matching child wins
//	rep(min, max, f)    repetition, bounded or unbounded (max == 0)
//	chr(c)              a single literal character
//	rng(lo, hi)         a single character in an inclusive range
//	but(f0, f1, ...)    f0 must match, and none of f1..fk may match there
//	chk(kind, f)        a zero-width assertion: '=', '!' or '<=' (lookbehind)
//	case_(name, m)      dispatch on parser state to a rule looked up in m
//	flip(name, m)       like case_, but a non-combinator entry is a value
//	set(name, f)        evaluate f and bind it into the enclosing rule's frame
//
// together with grammar-supplied named rules (productions) and terminals
// (StartOfLine, EndOfStream, Empty, AutoDetectIndent).
//
// The engine does not know the grammar or what the parse result should
// look like; both are supplied by the caller. The grammar is consumed
// through the Grammar interface (LookupRule, LookupTop); the caller's
// result accumulator is the Receiver: an arbitrary value on which the
// engine invokes optional Try__<X>/Got__<X>/Not__<X> methods as rules
// match or fail, where <X> is derived from the current rule-call path.
//
// Parsing is synchronous and single-threaded; one Parser handles exactly
// one input. Backtracking is by cursor rollback, not input copying: each
// combinator that can fail after partially matching is responsible for
// restoring the cursor itself.
package pegvm
