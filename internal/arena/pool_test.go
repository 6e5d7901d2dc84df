package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolAllocateAndView(t *testing.T) {
	p := NewPool[int]()
	i0 := p.Allocate()
	*i0 = 10
	i1 := p.Allocate()
	*i1 = 20

	require.Equal(t, 2, p.Allocated())
	require.Equal(t, 10, *p.View(0))
	require.Equal(t, 20, *p.View(1))
}

func TestPoolAllocateAcrossPageBoundary(t *testing.T) {
	p := NewPool[int]()
	for i := 0; i < pageSize+5; i++ {
		v := p.Allocate()
		*v = i
	}
	require.Equal(t, pageSize+5, p.Allocated())
	require.Equal(t, 0, *p.View(0))
	require.Equal(t, pageSize, *p.View(pageSize))
}

func TestPoolReset(t *testing.T) {
	p := NewPool[int]()
	p.Allocate()
	p.Allocate()
	p.Reset()
	require.Equal(t, 0, p.Allocated())
}
