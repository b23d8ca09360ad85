package pegvm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGrammarPanicsOnMissingStart(t *testing.T) {
	require.Panics(t, func() {
		NewGrammar("nope", map[string]*Combinator{"other": DefineRule("other", Chr('a'))})
	})
}

func TestNewGrammarPanicsOnNilRule(t *testing.T) {
	require.Panics(t, func() {
		NewGrammar("a", map[string]*Combinator{"a": nil})
	})
}

func TestNewGrammarPanicsOnNonNamedRule(t *testing.T) {
	require.Panics(t, func() {
		NewGrammar("a", map[string]*Combinator{"a": Chr('a')})
	})
}

func TestNewGrammarLookup(t *testing.T) {
	top := DefineRule("top", Chr('a'))
	g := NewGrammar("top", map[string]*Combinator{"top": top})

	r, ok := g.LookupRule("top")
	require.True(t, ok)
	require.Same(t, top, r)

	_, ok = g.LookupRule("missing")
	require.False(t, ok)

	require.Same(t, top, g.LookupTop())
}

func TestDefineRulePanicsOnNilBody(t *testing.T) {
	require.Panics(t, func() {
		DefineRule("x", nil)
	})
}

func TestCallUnknownRuleIsFatal(t *testing.T) {
	g := NewGrammar("top", map[string]*Combinator{"top": DefineRule("top", Call("missing"))})
	p := NewParser("a", g, nil, nil)
	_, err := p.Parse("")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownRule))
}

func TestCallDispatchesToNamedRule(t *testing.T) {
	g := NewGrammar("top", map[string]*Combinator{
		"top":    DefineRule("top", Call("letter")),
		"letter": DefineRule("letter", Chr('a')),
	})
	p := NewParser("a", g, nil, nil)
	ok, err := p.Parse("")
	require.NoError(t, err)
	require.True(t, ok)
}
