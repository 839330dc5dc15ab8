// Package loadbalance picks the node a client talks to among the nodes
// published for its network.
//
// Three strategies are implemented:
//   - RoundRobin:      rotate over equal nodes on every pick
//   - WeightedRandom:  nodes of different capacity, by NodeInstance.Weight
//   - ConsistentHash:  stick a client to one node for a given key
package loadbalance

import (
	"github.com/pkg/errors"

	"ckb-rpc/registry"
)

const (
	RoundRobin     = "round_robin"
	WeightedRandom = "weighted_random"
	ConsistentHash = "consistent_hash"
)

var ErrNoNodes = errors.New("loadbalance: no nodes available")

// Balancer is the interface for node selection strategies.
type Balancer interface {
	// Pick selects one node from the available list. Must be goroutine-safe.
	Pick(nodes []registry.NodeInstance) (*registry.NodeInstance, error)

	// Name returns the strategy name, as accepted by New.
	Name() string
}

// New returns the balancer called name. key is only used by ConsistentHash.
func New(name, key string) (Balancer, error) {
	switch name {
	case RoundRobin, "":
		return &RoundRobinBalancer{}, nil
	case WeightedRandom:
		return &WeightedRandomBalancer{}, nil
	case ConsistentHash:
		return NewConsistentHashBalancer(key), nil
	default:
		return nil, errors.Errorf("loadbalance: unknown balancer %q", name)
	}
}
