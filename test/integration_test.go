package test

import (
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"ckb-rpc/ckb"
	"ckb-rpc/client"
	"ckb-rpc/discovery"
	"ckb-rpc/loadbalance"
	"ckb-rpc/middleware"
	"ckb-rpc/protocol"
	"ckb-rpc/registry"
	"ckb-rpc/server"
	"ckb-rpc/transport"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// startNode 启动一个内存链节点
func startNode(t testing.TB) (*server.DevChain, string) {
	logger, _ := test.NewNullLogger()
	srv := server.NewServer(server.WithLogger(logger))
	chain := server.NewDevChain()
	_, err := srv.Register(chain)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return chain, ts.URL
}

// TestFullIntegration 完整端到端测试
// 链路: ckb.RPC → Middleware → HTTPTransport → gin → DevChain (reflect call)
func TestFullIntegration(t *testing.T) {
	chain, url := startNode(t)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	reg := prometheus.NewRegistry()

	rpc, err := ckb.New(url,
		client.WithTransport(transport.NewHTTPTransport(5*time.Second)),
		client.WithLogger(logger),
		client.WithIDGenerator(protocol.Sequential(1)),
		client.WithMiddleware(
			middleware.Logging(logger),
			middleware.Timeout(time.Second),
			middleware.Metrics(reg),
		),
	)
	require.NoError(t, err)
	ctx := context.Background()

	tx := ckb.RawTransaction{
		Outputs: []ckb.CellOutput{{
			Capacity: "0x174876e800",
			Lock:     ckb.Script{CodeHash: "0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8", HashType: "type"},
		}},
		OutputsData: []string{"0x"},
	}
	hash, err := rpc.SendTransaction(ctx, tx)
	require.NoError(t, err)

	chain.Mine()

	n, err := rpc.GetTipBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	status, err := rpc.GetTransaction(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, "committed", status.TxStatus.Status)

	assert.Len(t, hook.AllEntries(), 3)
	for _, e := range hook.AllEntries() {
		assert.Contains(t, e.Data, "method")
		assert.Equal(t, url, e.Data["url"])
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	var calls float64
	for _, f := range families {
		if f.GetName() != "ckb_rpc_calls_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			calls += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 3.0, calls)
}

// TestFailoverThroughRegistry 节点下线后客户端切换到另一个节点
func TestFailoverThroughRegistry(t *testing.T) {
	chainA, urlA := startNode(t)
	_, urlB := startNode(t)
	chainA.Mine()

	logger, _ := test.NewNullLogger()
	reg := registry.NewMemoryRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, reg.Register(ctx, "dev", registry.NodeInstance{URL: urlA, Weight: 1}, 10))

	rpc, err := ckb.New("http://127.0.0.1:1", client.WithLogger(logger))
	require.NoError(t, err)

	w := discovery.NewWatcher(reg, "dev", &loadbalance.RoundRobinBalancer{}, rpc, logger)
	go w.Run(ctx)

	require.Eventually(t, func() bool { return rpc.Node().URL == urlA }, time.Second, 5*time.Millisecond)
	n, err := rpc.GetTipBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	require.NoError(t, reg.Register(ctx, "dev", registry.NodeInstance{URL: urlB, Weight: 1}, 10))
	require.NoError(t, reg.Deregister(ctx, "dev", urlA))
	require.Eventually(t, func() bool { return rpc.Node().URL == urlB }, time.Second, 5*time.Millisecond)

	n, err = rpc.GetTipBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

// TestConcurrentCalls 多个 goroutine 共享同一个客户端
func TestConcurrentCalls(t *testing.T) {
	chain, url := startNode(t)
	for i := 0; i < 5; i++ {
		chain.Mine()
	}
	rpc, err := ckb.New(url)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			block, err := rpc.GetBlockByNumber(context.Background(), i%6)
			if err != nil {
				errs <- err
				return
			}
			if block == nil || block.Header.Number != hexutil.EncodeUint64(uint64(i%6)) {
				errs <- assert.AnError
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// TestFullIntegrationWithEtcd 需要本地 etcd: CKB_RPC_ETCD=127.0.0.1:2379
func TestFullIntegrationWithEtcd(t *testing.T) {
	endpoints := os.Getenv("CKB_RPC_ETCD")
	if endpoints == "" {
		t.Skip("CKB_RPC_ETCD not set")
	}
	reg, err := registry.NewEtcdRegistry(strings.Split(endpoints, ","), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer reg.Close()

	_, url := startNode(t)
	network := "it-" + time.Now().Format("150405.000000")
	ctx := context.Background()
	require.NoError(t, reg.Register(ctx, network, registry.NodeInstance{URL: url, Weight: 10}, 10))
	defer reg.Deregister(ctx, network, url)

	logger, _ := test.NewNullLogger()
	rpc, err := ckb.New("http://127.0.0.1:1", client.WithLogger(logger))
	require.NoError(t, err)

	w := discovery.NewWatcher(reg, network, loadbalance.NewConsistentHashBalancer("it"), rpc, logger)
	require.NoError(t, w.Refresh(ctx))
	assert.Equal(t, url, rpc.Node().URL)

	_, err = rpc.GetTipBlockNumber(ctx)
	require.NoError(t, err)
}
