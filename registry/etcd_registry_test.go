package registry

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestEtcd connects to the etcd named by CKB_RPC_ETCD, e.g. "localhost:2379".
func newTestEtcd(t *testing.T) *EtcdRegistry {
	endpoints := os.Getenv("CKB_RPC_ETCD")
	if endpoints == "" {
		t.Skip("CKB_RPC_ETCD not set")
	}
	reg, err := NewEtcdRegistry(strings.Split(endpoints, ","), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestNodeKey(t *testing.T) {
	assert.Equal(t, "/ckb-rpc/nodes/testnet/http:%2F%2F127.0.0.1:8114", nodeKey("testnet", "http://127.0.0.1:8114"))
}

func TestEtcdRegisterAndDiscover(t *testing.T) {
	reg := newTestEtcd(t)
	ctx := context.Background()
	network := "test-" + time.Now().Format("150405.000000")

	node1 := NodeInstance{URL: "http://127.0.0.1:8114", Weight: 10, Version: "0.20.0"}
	node2 := NodeInstance{URL: "http://127.0.0.1:8115", Weight: 5, Version: "0.20.0"}
	require.NoError(t, reg.Register(ctx, network, node1, 10))
	require.NoError(t, reg.Register(ctx, network, node2, 10))

	nodes, err := reg.Discover(ctx, network)
	require.NoError(t, err)
	assert.ElementsMatch(t, []NodeInstance{node1, node2}, nodes)

	require.NoError(t, reg.Deregister(ctx, network, node1.URL))
	nodes, err = reg.Discover(ctx, network)
	require.NoError(t, err)
	assert.Equal(t, []NodeInstance{node2}, nodes)

	require.NoError(t, reg.Deregister(ctx, network, node2.URL))
}

func TestEtcdWatch(t *testing.T) {
	reg := newTestEtcd(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	network := "watch-" + time.Now().Format("150405.000000")

	ch, err := reg.Watch(ctx, network)
	require.NoError(t, err)

	node := NodeInstance{URL: "http://127.0.0.1:8116", Weight: 1}
	require.NoError(t, reg.Register(ctx, network, node, 10))

	select {
	case nodes := <-ch:
		assert.Equal(t, []NodeInstance{node}, nodes)
	case <-ctx.Done():
		t.Fatal("no watch event")
	}
	require.NoError(t, reg.Deregister(ctx, network, node.URL))
}
