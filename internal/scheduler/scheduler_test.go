package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisit(t *testing.T) {
	t.Run("should visit only dirty nodes in order", func(t *testing.T) {
		dirty := NewDirtySet()
		dirty.Mark("c")
		dirty.Mark("a")

		var got []string
		n := Visit([]string{"a", "b", "c"}, dirty, func(id string) { got = append(got, id) })

		assert.Equal(t, []string{"a", "c"}, got)
		assert.Equal(t, 2, n)
		assert.Zero(t, dirty.Len())
	})

	t.Run("should pick up nodes marked later in the pass", func(t *testing.T) {
		dirty := NewDirtySet()
		dirty.Mark("a")

		var got []string
		Visit([]string{"a", "b", "c"}, dirty, func(id string) {
			got = append(got, id)
			if id == "a" {
				dirty.Mark("c")
			}
		})
		assert.Equal(t, []string{"a", "c"}, got)
	})

	t.Run("should keep back-edge marks for the next pass", func(t *testing.T) {
		dirty := NewDirtySet()
		dirty.Mark("b")

		Visit([]string{"a", "b"}, dirty, func(id string) {
			if id == "b" {
				dirty.Mark("a")
			}
		})
		assert.Equal(t, []string{"a"}, dirty.IDs())
	})
}
