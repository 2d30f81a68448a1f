package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLrukNodeHasKAccess(t *testing.T) {
	node := &lrukNode{k: 2}
	assert.False(t, node.hasKAccess())

	node.addTimestamp(1)
	assert.False(t, node.hasKAccess())

	node.addTimestamp(2)
	assert.True(t, node.hasKAccess())
}

func TestLrukNodeAddTimestampEvictsOldest(t *testing.T) {
	node := &lrukNode{k: 2}

	node.addTimestamp(1)
	node.addTimestamp(2)
	node.addTimestamp(3)

	assert.Equal(t, []int{2, 3}, node.history)
}

func TestLrukNodeKthAccessEmptyHistory(t *testing.T) {
	node := &lrukNode{k: 2}
	assert.Equal(t, -1, node.kthAccess())
}

func TestLrukNodeAddTimestampZeroK(t *testing.T) {
	node := &lrukNode{k: 0}

	assert.NotPanics(t, func() {
		node.addTimestamp(1)
		node.addTimestamp(2)
	})
}
