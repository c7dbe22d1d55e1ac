// Package snowflake generates unique, monotonically increasing int64 ids
// composed of a millisecond timestamp, a node number, and a per-millisecond
// sequence. The message store uses it to assign message ids on insert.
package snowflake

import (
	"errors"
	"sync"
	"time"
)

const (
	nodeBits  = 10
	stepBits  = 12
	nodeMax   = -1 ^ (-1 << nodeBits)
	stepMask  = -1 ^ (-1 << stepBits)
	timeShift = nodeBits + stepBits
	nodeShift = stepBits

	// Custom epoch: 2024-01-01 00:00:00 UTC.
	epoch int64 = 1704067200000
)

type Node struct {
	mu   sync.Mutex
	last int64
	node int64
	step int64
}

// NewNode returns a generator for the given node number. The node number
// must be unique per running instance for ids to stay globally unique.
func NewNode(node int64) (*Node, error) {
	if node < 0 || node > nodeMax {
		return nil, errors.New("snowflake: node number must be between 0 and 1023")
	}
	return &Node{node: node}, nil
}

// Generate returns the next id. Safe for concurrent use.
func (n *Node) Generate() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := time.Now().UnixMilli()
	if now < n.last {
		// Clock went backwards; hold the line until it catches up.
		now = n.last
	}

	if now == n.last {
		n.step = (n.step + 1) & stepMask
		if n.step == 0 {
			for now <= n.last {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		n.step = 0
	}
	n.last = now

	return ((now - epoch) << timeShift) | (n.node << nodeShift) | n.step
}
