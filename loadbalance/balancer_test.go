package loadbalance

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ckb-rpc/registry"
)

var testNodes = []registry.NodeInstance{
	{URL: "http://127.0.0.1:8114", Weight: 10, Version: "0.20.0"},
	{URL: "http://127.0.0.1:8115", Weight: 5, Version: "0.20.0"},
	{URL: "http://127.0.0.1:8116", Weight: 10, Version: "0.20.0"},
}

func TestRoundRobin(t *testing.T) {
	b := &RoundRobinBalancer{}

	for i := 0; i < 2*len(testNodes); i++ {
		node, err := b.Pick(testNodes)
		require.NoError(t, err)
		assert.Equal(t, testNodes[i%len(testNodes)].URL, node.URL)
	}
}

func TestEmptyNodes(t *testing.T) {
	for _, b := range []Balancer{&RoundRobinBalancer{}, &WeightedRandomBalancer{}, NewConsistentHashBalancer("k")} {
		_, err := b.Pick(nil)
		assert.ErrorIs(t, err, ErrNoNodes, b.Name())
	}
}

func TestWeightedRandom(t *testing.T) {
	b := &WeightedRandomBalancer{}

	counts := map[string]int{}
	n := 10000
	for i := 0; i < n; i++ {
		node, err := b.Pick(testNodes)
		require.NoError(t, err)
		counts[node.URL]++
	}

	// Weight ratio is 10:5:10, so :8114 should be picked ~2x as often as :8115
	ratio := float64(counts[testNodes[0].URL]) / float64(counts[testNodes[1].URL])
	assert.InDelta(t, 2.0, ratio, 0.5)
}

func TestWeightedRandomZeroWeights(t *testing.T) {
	b := &WeightedRandomBalancer{}
	nodes := []registry.NodeInstance{{URL: "http://a"}, {URL: "http://b"}}

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		node, err := b.Pick(nodes)
		require.NoError(t, err)
		seen[node.URL] = true
	}
	assert.Len(t, seen, 2)
}

func TestConsistentHash(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		b := NewConsistentHashBalancer(fmt.Sprintf("key-%d", i))
		node1, err := b.Pick(testNodes)
		require.NoError(t, err)
		node2, err := b.Pick(testNodes)
		require.NoError(t, err)
		assert.Equal(t, node1.URL, node2.URL)
		seen[node1.URL] = true
	}
	assert.GreaterOrEqual(t, len(seen), 2)
}

func TestConsistentHashPicksFromArgument(t *testing.T) {
	b := NewConsistentHashBalancer("lock-123")
	lists := [][]registry.NodeInstance{
		testNodes,
		testNodes[:1],
		testNodes[1:],
		{testNodes[2], testNodes[0]},
		testNodes,
	}
	for _, nodes := range lists {
		node, err := b.Pick(nodes)
		require.NoError(t, err)
		assert.Contains(t, nodes, *node)
	}
}

func TestConsistentHashPickIsSticky(t *testing.T) {
	b := NewConsistentHashBalancer("wallet-7")

	first, err := b.Pick(testNodes)
	require.NoError(t, err)

	reversed := []registry.NodeInstance{testNodes[2], testNodes[1], testNodes[0]}
	again, err := b.Pick(reversed)
	require.NoError(t, err)
	assert.Equal(t, first.URL, again.URL)

	// Dropping the chosen node moves the key; restoring it moves the key back.
	var rest []registry.NodeInstance
	for _, n := range testNodes {
		if n.URL != first.URL {
			rest = append(rest, n)
		}
	}
	other, err := b.Pick(rest)
	require.NoError(t, err)
	assert.NotEqual(t, first.URL, other.URL)

	rest = append(rest, *first)
	back, err := b.Pick(rest)
	require.NoError(t, err)
	assert.Equal(t, first.URL, back.URL)
}

func TestNew(t *testing.T) {
	for _, name := range []string{RoundRobin, WeightedRandom, ConsistentHash} {
		b, err := New(name, "k")
		require.NoError(t, err)
		assert.Equal(t, name, b.Name())
	}

	b, err := New("", "")
	require.NoError(t, err)
	assert.Equal(t, RoundRobin, b.Name())

	_, err = New("random", "")
	assert.Error(t, err)
}
