package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"
	"strings"
	"sync"

	"ckb-rpc/registry"

	"github.com/pkg/errors"
)

const defaultReplicas = 100

// ConsistentHashBalancer maps a fixed key onto a hash ring of nodes, so a
// client keeps talking to the same node while the node list changes around it.
//
// Each node is placed on the ring as defaultReplicas virtual nodes, hashed from
// "{url}#{i}", to spread the ring evenly.
//
//	Hash Ring:
//	                  0
//	                ╱   ╲
//	              ╱       ╲
//	         B ●               ● A
//	           │    key ◆──►   │   (clockwise to nearest node → A)
//	         C ●               ● A' (virtual node of A)
//	              ╲       ╱
//	                ╲   ╱
type ConsistentHashBalancer struct {
	key      string
	replicas int

	mu    sync.Mutex
	sig   string // URLs the ring was built from
	ring  []uint32
	nodes map[uint32]registry.NodeInstance
}

func NewConsistentHashBalancer(key string) *ConsistentHashBalancer {
	return &ConsistentHashBalancer{
		key:      key,
		replicas: defaultReplicas,
		nodes:    make(map[uint32]registry.NodeInstance),
	}
}

func (b *ConsistentHashBalancer) addLocked(node registry.NodeInstance) {
	for i := 0; i < b.replicas; i++ {
		hash := crc32.ChecksumIEEE([]byte(fmt.Sprintf("%s#%d", node.URL, i)))
		b.ring = append(b.ring, hash)
		b.nodes[hash] = node
	}
}

func (b *ConsistentHashBalancer) sortLocked() {
	sort.Slice(b.ring, func(i, j int) bool {
		return b.ring[i] < b.ring[j]
	})
}

// lookupLocked finds the first virtual node at or after the key's hash,
// wrapping around to the start of the ring.
func (b *ConsistentHashBalancer) lookupLocked(key string) (registry.NodeInstance, bool) {
	if len(b.ring) == 0 {
		return registry.NodeInstance{}, false
	}
	hash := crc32.ChecksumIEEE([]byte(key))
	idx := sort.Search(len(b.ring), func(i int) bool {
		return b.ring[i] >= hash
	})
	if idx == len(b.ring) {
		idx = 0
	}
	return b.nodes[b.ring[idx]], true
}

// Pick rebuilds the ring when the node list differs from the last one and
// returns the node owning the balancer's key.
func (b *ConsistentHashBalancer) Pick(nodes []registry.NodeInstance) (*registry.NodeInstance, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if sig := signature(nodes); sig != b.sig {
		b.ring = b.ring[:0]
		b.nodes = make(map[uint32]registry.NodeInstance, len(nodes)*b.replicas)
		for _, n := range nodes {
			b.addLocked(n)
		}
		b.sortLocked()
		b.sig = sig
	}

	node, _ := b.lookupLocked(b.key)
	for i := range nodes {
		if nodes[i].URL == node.URL {
			return &nodes[i], nil
		}
	}
	return nil, errors.Errorf("loadbalance: ring owner %s not in node list", node.URL)
}

func (b *ConsistentHashBalancer) Name() string {
	return ConsistentHash
}

func signature(nodes []registry.NodeInstance) string {
	urls := make([]string, len(nodes))
	for i, n := range nodes {
		urls[i] = n.URL
	}
	sort.Strings(urls)
	return strings.Join(urls, "\n")
}
