package id

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// DefaultNode is used when New is called before Init, as in tests.
const DefaultNode int64 = 1

// ErrAlreadyInitialized is returned by Init once a node is in use, including
// the default node claimed by an earlier New.
var ErrAlreadyInitialized = errors.New("snowflake node already initialized")

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init initializes the Snowflake node with the given node ID. It must run
// before the first New; a failed Init leaves the node unset.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("init snowflake node %d: %w", nodeID, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if node != nil {
		return fmt.Errorf("init snowflake node %d: %w", nodeID, ErrAlreadyInitialized)
	}
	node = n
	return nil
}

// New generates a time-ordered int64 ID for turns and safety events.
func New() int64 {
	mu.Lock()
	if node == nil {
		n, err := snowflake.NewNode(DefaultNode)
		if err != nil {
			mu.Unlock()
			panic(fmt.Sprintf("snowflake default node: %v", err))
		}
		node = n
	}
	n := node
	mu.Unlock()
	return n.Generate().Int64()
}
