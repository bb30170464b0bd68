package pkguid

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// Epoch is the snowflake epoch in milliseconds (2025-12-01T00:00:00Z).
const Epoch int64 = 1764547200000

//nolint:gochecknoglobals // snowflake.Epoch is package state in the library
var epochOnce sync.Once

// Snowflake generates numeric IDs using the Snowflake algorithm.
//
// IDs from one node are strictly increasing, which the stores rely on as a
// tie-breaker when two rows share a timestamp.
type Snowflake struct {
	node *snowflake.Node
}

func generateRandomNodeID() (int64, error) {
	var nodeID int64
	err := binary.Read(rand.Reader, binary.BigEndian, &nodeID)
	if err != nil {
		return 0, err
	}

	return nodeID & (1<<10 - 1), nil // Limiting to 10 bits for node ID
}

// NewSnowflake constructs a Snowflake generator. A negative nodeID picks a
// random node.
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	if nodeID < 0 {
		id, err := generateRandomNodeID()
		if err != nil {
			return nil, err
		}
		nodeID = id
	}

	epochOnce.Do(func() {
		snowflake.Epoch = Epoch
	})

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new unique numeric ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
