package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	s := NewStore[int]()

	_, ok := s.Get("a")
	assert.False(t, ok)

	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("a", 3)

	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = s.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}
