package test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"ckb-rpc/ckb"
	"ckb-rpc/client"
	"ckb-rpc/codec"
	"ckb-rpc/message"
	"ckb-rpc/protocol"
	"ckb-rpc/transport"
)

// ---- Setup 公共函数 ----

func setupNodeAndClient(b *testing.B, opts ...client.Option) *ckb.RPC {
	chain, url := startNode(b)
	chain.Mine()
	rpc, err := ckb.New(url, opts...)
	if err != nil {
		b.Fatal(err)
	}
	return rpc
}

// inMemoryNode answers every call without a network round trip.
func inMemoryNode() transport.Transport {
	return transport.Func(func(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error) {
		var req message.Request
		if err := codec.Default.Decode(body, &req); err != nil {
			return nil, err
		}
		resp := message.Response{JSONRPC: protocol.Version, Result: []byte(`"0x400"`)}
		resp.ID, _ = codec.Default.Encode(req.ID)
		return codec.Default.Encode(&resp)
	})
}

// ---- Benchmark ----

// 场景1: 单 goroutine 串行调用
func BenchmarkSerialCall(b *testing.B) {
	rpc := setupNodeAndClient(b)
	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := rpc.GetTipBlockNumber(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// 场景2: 多 goroutine 并发调用
func BenchmarkConcurrentCall(b *testing.B) {
	rpc := setupNodeAndClient(b)
	ctx := context.Background()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := rpc.GetBlockByNumber(ctx, 1); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// 场景3: 调用管线本身（不走网络）
func BenchmarkCallPipeline(b *testing.B) {
	rpc, err := ckb.New(ckb.DefaultNodeURL, client.WithTransport(inMemoryNode()))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := rpc.GetTipBlockNumber(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// 场景4: 打开调试跟踪后的开销
func BenchmarkCallPipelineTraced(b *testing.B) {
	logger, _ := test.NewNullLogger()
	rpc, err := ckb.New(ckb.DefaultNodeURL,
		client.WithTransport(inMemoryNode()),
		client.WithTracer(client.NewConsoleTracer(io.Discard)),
		client.WithLogger(logger),
	)
	if err != nil {
		b.Fatal(err)
	}
	rpc.SetDebugLevel(client.DebugOn)
	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := rpc.GetTipBlockNumber(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
