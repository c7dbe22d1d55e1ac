package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRange(t *testing.T) {
	_, err := NewNode(-1)
	assert.Error(t, err)
	_, err = NewNode(1024)
	assert.Error(t, err)
	_, err = NewNode(0)
	assert.NoError(t, err)
	_, err = NewNode(1023)
	assert.NoError(t, err)
}

func TestGenerateMonotonic(t *testing.T) {
	node, err := NewNode(1)
	require.NoError(t, err)

	var last int64
	for i := 0; i < 10000; i++ {
		id := node.Generate()
		assert.Greater(t, id, last)
		last = id
	}
}
