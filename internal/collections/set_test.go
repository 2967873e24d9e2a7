package collections_test

import (
	"testing"

	"bennypowers.dev/slimls/internal/collections"
	"github.com/stretchr/testify/assert"
)

func TestNewSet(t *testing.T) {
	t.Run("empty set", func(t *testing.T) {
		s := collections.NewSet[string]()
		assert.NotNil(t, s)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		s := collections.NewSet("else", "when", "else")
		assert.Equal(t, 2, s.Len())
		assert.True(t, s.Has("else"))
		assert.True(t, s.Has("when"))
		assert.False(t, s.Has("end"))
	})
}

func TestSetAdd(t *testing.T) {
	s := collections.NewSet[string]()
	s.Add("User", "Admin::User")
	s.Add("User")
	assert.Equal(t, 2, s.Len())
	assert.ElementsMatch(t, []string{"User", "Admin::User"}, s.Members())
}

func TestSorted(t *testing.T) {
	s := collections.NewSet("Post", "Admin::User", "Comment")
	assert.Equal(t, []string{"Admin::User", "Comment", "Post"}, collections.Sorted(s))
	assert.Empty(t, collections.Sorted(collections.NewSet[int]()))
}

func TestSetString(t *testing.T) {
	s := collections.NewSet(".slim")
	assert.Equal(t, "[.slim]", s.String())
}
