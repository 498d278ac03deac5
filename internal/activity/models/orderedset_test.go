package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedSetAddPreservesInsertionOrder(t *testing.T) {
	s := NewOrderedSet[int64]()
	s.Add(3)
	s.Add(1)
	s.Add(2)
	s.Add(1) // duplicate, no-op

	assert.Equal(t, []int64{3, 1, 2}, s.Slice())
	assert.Equal(t, 3, s.Len())
}

func TestOrderedSetAddReturnsWhetherNew(t *testing.T) {
	s := NewOrderedSet[int64]()
	require.True(t, s.Add(1))
	require.False(t, s.Add(1))
}

func TestOrderedSetRemove(t *testing.T) {
	s := NewOrderedSet[int64](1, 2, 3)
	require.True(t, s.Remove(2))
	require.False(t, s.Remove(2))
	assert.Equal(t, []int64{1, 3}, s.Slice())
	assert.False(t, s.Has(2))
}

func TestOrderedSetIntersectsAndIntersectionSize(t *testing.T) {
	a := NewOrderedSet[int64](1, 2, 3)
	b := NewOrderedSet[int64](3, 4, 5)
	c := NewOrderedSet[int64](6, 7)

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))
	assert.Equal(t, 1, a.IntersectionSize(b))
	assert.Equal(t, 0, a.IntersectionSize(c))
}

func TestOrderedSetCloneIsIndependent(t *testing.T) {
	a := NewOrderedSet[int64](1, 2)
	b := a.Clone()
	b.Add(3)

	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 3, b.Len())
}

func TestOrderedSetNilReceiverIntersects(t *testing.T) {
	var nilSet *OrderedSet[int64]
	other := NewOrderedSet[int64](1)

	assert.False(t, nilSet.Intersects(other))
	assert.Equal(t, 0, nilSet.IntersectionSize(other))
}
