package loadbalance

import (
	"math/rand"

	"ckb-rpc/registry"
)

// WeightedRandomBalancer picks a node with probability proportional to its weight.
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Pick(nodes []registry.NodeInstance) (*registry.NodeInstance, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}

	// Non-positive weights count as zero.
	totalWeight := 0
	for _, n := range nodes {
		if n.Weight > 0 {
			totalWeight += n.Weight
		}
	}
	// Unweighted nodes are picked uniformly.
	if totalWeight == 0 {
		return &nodes[rand.Intn(len(nodes))], nil
	}

	r := rand.Intn(totalWeight)
	for i := range nodes {
		if nodes[i].Weight <= 0 {
			continue
		}
		r -= nodes[i].Weight
		if r < 0 {
			return &nodes[i], nil
		}
	}
	return &nodes[len(nodes)-1], nil
}

func (b *WeightedRandomBalancer) Name() string {
	return WeightedRandom
}
