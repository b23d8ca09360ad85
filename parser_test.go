package pegvm

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsLookUpTopRule(t *testing.T) {
	g := NewGrammar("top", map[string]*Combinator{"top": DefineRule("top", Chr('a'))})
	p := NewParser("a", g, nil, nil)
	ok, err := p.Parse("")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestParseByExplicitRuleName(t *testing.T) {
	g := NewGrammar("top", map[string]*Combinator{
		"top":    DefineRule("top", Chr('a')),
		"letter": DefineRule("letter", Chr('b')),
	})
	p := NewParser("b", g, nil, nil)
	ok, err := p.Parse("letter")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestParseUnknownExplicitRuleIsFatal(t *testing.T) {
	g := NewGrammar("top", map[string]*Combinator{"top": DefineRule("top", Chr('a'))})
	p := NewParser("a", g, nil, nil)
	_, err := p.Parse("nope")
	require.True(t, errors.Is(err, ErrUnknownRule))
}

func TestParseFailsOnNoMatch(t *testing.T) {
	g := NewGrammar("top", map[string]*Combinator{"top": DefineRule("top", Chr('a'))})
	p := NewParser("b", g, nil, nil)
	ok, err := p.Parse("")
	require.False(t, ok)
	require.True(t, errors.Is(err, ErrParserFailed))
}

func TestParseFailsOnUnconsumedTail(t *testing.T) {
	g := NewGrammar("top", map[string]*Combinator{"top": DefineRule("top", Chr('a'))})
	p := NewParser("ab", g, nil, nil)
	ok, err := p.Parse("")
	require.False(t, ok)
	require.True(t, errors.Is(err, ErrUnconsumedTail))
}

func TestNewParserDefaultsConfig(t *testing.T) {
	p := NewParser("x", nil, nil, nil)
	require.NotNil(t, p.trace)
	require.False(t, p.trace.enabled)
	require.Equal(t, 1, p.Len())
	require.Equal(t, 0, p.Pos())
}

func TestNewParserWrapsLogFunc(t *testing.T) {
	var got string
	cfg := &Config{LogFunc: func(format string, args ...any) { got = format }}
	p := NewParser("", nil, nil, cfg)
	p.log("hello %d", 1)
	require.Equal(t, "hello %d", got)
}

func TestNewParserWithNilLogFuncIsSafe(t *testing.T) {
	p := NewParser("", nil, nil, nil)
	require.NotPanics(t, func() { p.log("whatever") })
}

// TestEndToEndAllAnyRepBacktrack exercises all/any/rep together on a
// small "a*b" grammar that must backtrack any's first branch.
func TestEndToEndAllAnyRepBacktrack(t *testing.T) {
	g := NewGrammar("top", map[string]*Combinator{
		"top": DefineRule("top", Any(
			All(Rep(1, 0, Chr('a')), Chr('c')),
			All(Rep(0, 0, Chr('a')), Chr('b')),
		)),
	})
	p := NewParser("aaab", g, nil, nil)
	ok, err := p.Parse("")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEndToEndTraceWithReceiverHooksTogether(t *testing.T) {
	var buf bytes.Buffer
	g := NewGrammar("TOP", map[string]*Combinator{"TOP": DefineRule("TOP", All(Chr('a')))})
	rec := &recordingReceiver{}
	p := NewParser("a", g, rec, &Config{Trace: true, TraceOut: &buf})
	ok, err := p.Parse("")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, buf.String())
	require.Equal(t, []string{"try__TOP", "try__TOP__chr_61", "got__TOP__chr_61", "got__TOP"}, rec.events)
}

func TestCallerFrameSharesStateAcrossNestingDepthsWithinOneRule(t *testing.T) {
	g := NewGrammar("block", map[string]*Combinator{
		"block": DefineRule("block", All(
			Set("n", NewLiteral(3)),
			Rep(1, 1, All(
				Case("n", map[string]*Combinator{"3": Chr('x')}),
			)),
		)),
	})
	p := NewParser("x", g, nil, nil)
	ok, err := p.Parse("")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCallerFrameDoesNotShareAcrossSeparateRuleInvocations(t *testing.T) {
	g := NewGrammar("top", map[string]*Combinator{
		"top":    DefineRule("top", All(Set("n", NewLiteral(3)), Call("child"))),
		"child":  DefineRule("child", Case("n", map[string]*Combinator{"3": Chr('x')})),
	})
	p := NewParser("x", g, nil, nil)
	_, err := p.Parse("")
	require.True(t, errors.Is(err, ErrMissingKey))
}
