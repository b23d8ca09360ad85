package pegvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackPushPopLevels(t *testing.T) {
	var s stack
	require.Equal(t, 0, s.depth())
	require.Equal(t, s.rootFrame(), s.state())

	f1 := s.push("a", "a", true, 0)
	require.Equal(t, 1, f1.Lvl())
	f2 := s.push("b", "b", false, 3)
	require.Equal(t, 2, f2.Lvl())
	require.Equal(t, 3, f2.Pos())

	popped := s.pop()
	require.Same(t, f2, popped)
	require.Equal(t, 1, s.depth())

	s.pop()
	require.Equal(t, 0, s.depth())
}

func TestFrameGetSet(t *testing.T) {
	f := &Frame{}
	_, ok := f.Get("x")
	require.False(t, ok)

	f.Set("x", 7)
	v, ok := f.Get("x")
	require.True(t, ok)
	require.Equal(t, 7, v)
}

func TestFrameLabelFallsBackToName(t *testing.T) {
	f := &Frame{name: "chr_61"}
	require.Equal(t, "chr_61", f.Label())

	f.label = "chr(0x61)"
	require.Equal(t, "chr(0x61)", f.Label())
}

func TestRootFrameIsNotSharedAcrossStacks(t *testing.T) {
	var a, b stack
	a.rootFrame().Set("x", 1)
	_, ok := b.rootFrame().Get("x")
	require.False(t, ok)
	require.NotSame(t, a.rootFrame(), b.rootFrame())
}
