package lsra

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegMaskBasics(t *testing.T) {
	m := NewRegMask(1, 5, 64)
	require.True(t, m.Has(1))
	require.True(t, m.Has(5))
	require.True(t, m.Has(64))
	require.False(t, m.Has(2))
	require.Equal(t, 3, m.Count())

	lo, ok := m.LowestReg()
	require.True(t, ok)
	require.Equal(t, RealReg(1), lo)

	m2 := m.Without(1)
	require.False(t, m2.Has(1))
	require.Equal(t, 2, m2.Count())

	u := m.Union(NewRegMask(2))
	require.Equal(t, 4, u.Count())

	i := m.Intersect(NewRegMask(5, 6))
	single, ok := i.Single()
	require.True(t, ok)
	require.Equal(t, RealReg(5), single)
}

func TestRegMaskEmpty(t *testing.T) {
	var m RegMask
	require.True(t, m.Empty())
	_, ok := m.LowestReg()
	require.False(t, ok)
}

func TestConstrain(t *testing.T) {
	actual := NewRegMask(1, 2, 3)
	constraint := NewRegMask(2)

	narrowed := constrain(actual, constraint, 1)
	require.Equal(t, NewRegMask(2), narrowed)

	unchanged := constrain(actual, constraint, 2)
	require.Equal(t, actual, unchanged)
}
