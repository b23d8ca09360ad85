package pegvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReturnTypeString(t *testing.T) {
	require.Equal(t, "boolean", TypeBoolean.String())
	require.Equal(t, "any", TypeAny.String())
}

func TestNewLiteralRoundTrips(t *testing.T) {
	lit := NewLiteral(42)
	require.Equal(t, KindLiteral, lit.Kind)
	require.Equal(t, 42, lit.Lit)

	p := NewParser("", nil, nil, nil)
	v, err := p.call(lit, TypeAny)
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestNamedRuleSetsFlag(t *testing.T) {
	plain := NewRule("x", TypeBoolean, nil)
	require.False(t, plain.Named)

	named := NamedRule("x", TypeBoolean, nil)
	require.True(t, named.Named)
}
