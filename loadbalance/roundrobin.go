package loadbalance

import (
	"sync/atomic"

	"ckb-rpc/registry"
)

// RoundRobinBalancer hands out nodes in order.
// Uses an atomic counter for lock-free, goroutine-safe operation.
type RoundRobinBalancer struct {
	counter atomic.Uint64
}

func (b *RoundRobinBalancer) Pick(nodes []registry.NodeInstance) (*registry.NodeInstance, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}
	index := (b.counter.Add(1) - 1) % uint64(len(nodes))
	return &nodes[index], nil
}

func (b *RoundRobinBalancer) Name() string {
	return RoundRobin
}
