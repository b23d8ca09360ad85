package pegvm

// call is the Call Dispatcher (§4.1): the single entry point that
// resolves a target uniformly, whatever shape it takes.
func (p *Parser) call(target *Combinator, expected ReturnType) (any, error) {
	if target == nil {
		return nil, p.fatal(ErrBadCallTarget, "<nil>")
	}
	switch target.Kind {
	case KindLiteral:
		return target.Lit, nil
	case KindApply:
		return p.callApply(target, expected)
	case KindRule:
		return p.callRule(target, target, nil, expected)
	default:
		return nil, p.fatalf(ErrBadCallTarget, target.Name, "unknown combinator kind %d", target.Kind)
	}
}

func (p *Parser) callApply(target *Combinator, expected ReturnType) (any, error) {
	head := target.Head
	if head == nil {
		return nil, p.fatal(ErrBadCallTarget, target.Name)
	}
	switch head.Kind {
	case KindLiteral:
		return head.Lit, nil
	case KindRule:
		args, err := p.resolveArgs(target.Args)
		if err != nil {
			return nil, err
		}
		return p.callRule(target, head, args, expected)
	default:
		return nil, p.fatalf(ErrBadCallTarget, target.Name, "apply head has kind %d", head.Kind)
	}
}

// resolveArgs evaluates an Apply's argument list (§4.1 step 1): Thunks are
// invoked to produce their value, ground values pass through unchanged.
// *Combinator children are passed through untouched — they are called
// lazily, exactly when and as many times as the receiving combinator's own
// Fn decides to (see DESIGN.md Open Question 2).
func (p *Parser) resolveArgs(args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		if th, ok := a.(Thunk); ok {
			out[i] = th()
			continue
		}
		out[i] = a
	}
	return out, nil
}

// resolveValue evaluates a single value-producing argument: a
// *Combinator is called with expected_type='any', a Thunk is invoked, and
// anything else passes through unchanged. Used by combinators that need
// an immediate value from a sub-expression (add, sub, set, rep's bounds).
func (p *Parser) resolveValue(v any) (any, error) {
	switch x := v.(type) {
	case *Combinator:
		return p.call(x, TypeAny)
	case Thunk:
		return x(), nil
	default:
		return v, nil
	}
}

// callRule implements the full call protocol for a Rule (§4.1): push a
// frame, trace and fire `try`, run the body (trampolining through any
// returned *Combinator within the same frame), enforce the declared
// type, fire `got`/`not` and trace, then pop.
func (p *Parser) callRule(identity, head *Combinator, args []any, expected ReturnType) (any, error) {
	// identity is the combinator the caller actually dispatched to: for a
	// bare Rule call identity == head, but for an Apply (e.g. chr('a'),
	// canonically "chr_61") identity carries the call-site-specific name
	// that head (shared across every chr(...) instance, just "chr") does
	// not — frames and hooks must key off identity, not head.
	label := identity.TraceLabel
	if label == "" {
		label = identity.Name
	}
	frame := p.stack.push(identity.Name, label, identity.Named, p.pos)
	entry := p.pos
	p.trace.event(evTry, frame, p)
	hooks := p.hookFor(identity)
	hooks.fireTry(p, frame, entry)

	result, err := p.trampoline(head.Fn, args)
	if err != nil {
		p.stack.pop()
		return nil, err
	}

	if expected == TypeAny {
		p.stack.pop()
		if result == nil {
			return nil, p.fatal(ErrTypeMismatch, head.Name)
		}
		return result, nil
	}

	ok, isBool := result.(bool)
	if !isBool {
		p.stack.pop()
		return nil, p.fatalf(ErrTypeMismatch, head.Name, "expected boolean, got %T", result)
	}

	if ok {
		p.trace.event(evGot, frame, p)
		hooks.fireGot(p, frame, entry)
	} else {
		p.trace.event(evNot, frame, p)
		hooks.fireNot(p, frame, entry)
	}
	p.stack.pop()
	return ok, nil
}

// trampoline repeatedly invokes a RuleFunc, resolving a returned
// *Combinator in place — same frame, no extra trace/hook events — until
// a ground value is produced (§4.1 step 4). Implemented as an explicit
// loop rather than recursion per §9's host-stack guidance. None of the
// library combinators in library.go actually return a *Combinator (they
// perform their own nested p.call and return a ground value directly),
// so this mostly exists for grammar-supplied rules that want to express
// "my body is just this other expression" without writing a nested call.
func (p *Parser) trampoline(fn RuleFunc, args []any) (any, error) {
	for {
		result, err := fn(p, args)
		if err != nil {
			return nil, err
		}
		next, ok := result.(*Combinator)
		if !ok {
			return result, nil
		}
		switch next.Kind {
		case KindLiteral:
			return next.Lit, nil
		case KindRule:
			fn, args = next.Fn, nil
		case KindApply:
			if next.Head == nil || next.Head.Kind != KindRule {
				return nil, p.fatal(ErrBadCallTarget, next.Name)
			}
			resolved, rerr := p.resolveArgs(next.Args)
			if rerr != nil {
				return nil, rerr
			}
			fn, args = next.Head.Fn, resolved
		default:
			return nil, p.fatalf(ErrBadCallTarget, next.Name, "unknown combinator kind %d", next.Kind)
		}
	}
}
