package export

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Numberer hands out invoice numbers. They are snowflake ids: unique across
// nodes and increasing over time.
type Numberer struct {
	node *snowflake.Node
}

// NewNumberer creates a numberer for node (0..1023).
func NewNumberer(node int64) (*Numberer, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", node, err)
	}
	return &Numberer{node: n}, nil
}

// Next returns a fresh id. Its String form is the printed invoice number.
func (n *Numberer) Next() snowflake.ID {
	return n.node.Generate()
}
