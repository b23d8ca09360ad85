package pegvm

import "fmt"

// MapGrammar is the simplest Grammar (§6): a fixed table of named
// productions plus a designated start rule, built once and then immutable.
// It plays the same role tef/ez's Grammar.rules/nameIdx table plays after
// BuildGrammar returns, but takes *Combinator values directly rather than
// interpreting a builder-closure DSL — grammar authors build their rule
// tree with the library.go constructors and register it here.
type MapGrammar struct {
	start string
	rules map[string]*Combinator
}

// NewGrammar builds a MapGrammar from a name->rule table and a start rule
// name. Every rule must be Named (built via NamedRule) so it can anchor a
// receiver hook base-name (§4.4); NewGrammar panics on a programming error
// here because a malformed grammar table is a build-time defect, not a
// runtime parse failure.
func NewGrammar(start string, rules map[string]*Combinator) *MapGrammar {
	if _, ok := rules[start]; !ok {
		panic(fmt.Sprintf("pegvm: start rule %q not in grammar", start))
	}
	for name, r := range rules {
		if r == nil {
			panic(fmt.Sprintf("pegvm: rule %q is nil", name))
		}
		if !r.Named {
			panic(fmt.Sprintf("pegvm: rule %q must be built with NamedRule", name))
		}
	}
	return &MapGrammar{start: start, rules: rules}
}

func (g *MapGrammar) LookupRule(name string) (*Combinator, bool) {
	r, ok := g.rules[name]
	return r, ok
}

func (g *MapGrammar) LookupTop() *Combinator {
	return g.rules[g.start]
}

// DefineRule wraps body as a Named production called name: its own frame
// is what receiver hooks and trace lines anchor on (§4.4), and its
// children are reached through Call("name") from elsewhere in the
// grammar. Mirrors tef/ez's Grammar.Define(name, stub).
func DefineRule(name string, body *Combinator) *Combinator {
	if body == nil {
		panic(fmt.Sprintf("pegvm: rule %q has nil body", name))
	}
	return NamedRule(name, TypeBoolean, func(p *Parser, args []any) (any, error) {
		return body, nil
	})
}

// Call builds a combinator that defers to a named rule looked up in the
// active parser's grammar at call time, mirroring tef/ez's Grammar.Call
// ("reference a rule by name, resolved when the grammar is built" — here
// resolved lazily against Parser.grammar on every invocation since a
// *Combinator has no grammar pointer of its own until it is parsed with).
func Call(name string) *Combinator {
	head := NewRule("call_"+name, TypeBoolean, func(p *Parser, args []any) (any, error) {
		target, ok := p.grammar.LookupRule(name)
		if !ok {
			return nil, p.fatalf(ErrUnknownRule, "call_"+name, "unknown rule %q", name)
		}
		result, err := p.call(target, TypeBoolean)
		if err != nil {
			return nil, err
		}
		return result.(bool), nil
	})
	a := NewApply("call_"+name, head)
	a.TraceLabel = name
	return a
}
