package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ckb-rpc/message"
)

// 模拟一个简单的 handler：直接返回成功响应
func echoHandler(ctx context.Context, url string, req *message.Request) ([]byte, error) {
	return []byte("ok"), nil
}

// 模拟一个慢 handler：等到 context 结束
func slowHandler(ctx context.Context, url string, req *message.Request) ([]byte, error) {
	select {
	case <-time.After(200 * time.Millisecond):
		return []byte("ok"), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var errBoom = errors.New("boom")

func failingHandler(ctx context.Context, url string, req *message.Request) ([]byte, error) {
	return nil, errBoom
}

func newRequest() *message.Request {
	return &message.Request{ID: 1, Method: "get_tip_block_number", Params: []any{}, JSONRPC: "2.0"}
}

func TestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	body, err := Logging(logger)(echoHandler)(context.Background(), "http://node", newRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "get_tip_block_number", entry.Data["method"])
	assert.Equal(t, "http://node", entry.Data["url"])

	_, err = Logging(logger)(failingHandler)(context.Background(), "http://node", newRequest())
	assert.Same(t, errBoom, err)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestTimeoutPass(t *testing.T) {
	// 超时 500ms，handler 很快，应该正常返回
	body, err := Timeout(500*time.Millisecond)(echoHandler)(context.Background(), "", newRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestTimeoutExceeded(t *testing.T) {
	// 超时 50ms，handler 需要 200ms，应该超时
	_, err := Timeout(50*time.Millisecond)(slowHandler)(context.Background(), "", newRequest())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimit(t *testing.T) {
	// rate=1 per second, burst=2 → 前 2 个立刻放行，第 3 个被拒
	handler := RateLimit(1, 2)(echoHandler)

	for i := 0; i < 2; i++ {
		_, err := handler(context.Background(), "", newRequest())
		require.NoError(t, err, "request %d should pass", i)
	}

	_, err := handler(context.Background(), "", newRequest())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()

	ok := Metrics(reg)(echoHandler)
	bad := Metrics(reg)(failingHandler)

	_, _ = ok(context.Background(), "", newRequest())
	_, _ = ok(context.Background(), "", newRequest())
	_, _ = bad(context.Background(), "", newRequest())

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	var observed uint64
	for _, mf := range families {
		switch mf.GetName() {
		case "ckb_rpc_calls_total":
			for _, m := range mf.GetMetric() {
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "outcome" {
						counts[lp.GetValue()] += m.GetCounter().GetValue()
					}
				}
			}
		case "ckb_rpc_call_duration_seconds":
			for _, m := range mf.GetMetric() {
				observed += m.GetHistogram().GetSampleCount()
			}
		}
	}
	assert.Equal(t, 2.0, counts["ok"])
	assert.Equal(t, 1.0, counts["error"])
	assert.Equal(t, uint64(3), observed)
}

func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, url string, req *message.Request) ([]byte, error) {
				order = append(order, name)
				return next(ctx, url, req)
			}
		}
	}

	handler := Chain(mark("a"), mark("b"), Timeout(500*time.Millisecond))(echoHandler)
	body, err := handler(context.Background(), "", newRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, []string{"a", "b"}, order)
}
