package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAddHasRemove(t *testing.T) {
	var s Set
	s.Add(3)
	s.Add(70)
	require.True(t, s.Has(3))
	require.True(t, s.Has(70))
	require.False(t, s.Has(4))
	require.Equal(t, 2, s.Count())

	s.Remove(3)
	require.False(t, s.Has(3))
	require.Equal(t, 1, s.Count())
}

func TestSetRangeAscending(t *testing.T) {
	var s Set
	s.Add(5)
	s.Add(1)
	s.Add(130)

	var got []uint
	s.Range(func(i uint) { got = append(got, i) })
	require.Equal(t, []uint{1, 5, 130}, got)
}

func TestSetUnion(t *testing.T) {
	var a, b Set
	a.Add(1)
	b.Add(1)
	b.Add(2)

	changed := a.Union(&b)
	require.True(t, changed)
	require.True(t, a.Has(2))

	changed = a.Union(&b)
	require.False(t, changed)
}

func TestSetReset(t *testing.T) {
	var s Set
	s.Add(9)
	s.Reset()
	require.Equal(t, 0, s.Count())
	require.False(t, s.Has(9))
}
