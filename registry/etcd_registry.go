package registry

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

// KeyPrefix is the root of every node entry:
//
//	Key:   /ckb-rpc/nodes/{network}/{escaped URL}
//	Value: JSON-encoded NodeInstance
//
// Entries carry a TTL lease; when the publisher dies the lease expires and
// the node disappears from Discover.
const KeyPrefix = "/ckb-rpc/nodes/"

const dialTimeout = 5 * time.Second

// EtcdRegistry implements Registry on etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client
	logger *zap.Logger

	mu     sync.Mutex
	leases map[string]registration // key → lease of a node registered here
}

type registration struct {
	lease  clientv3.LeaseID
	cancel context.CancelFunc
}

// NewEtcdRegistry connects to endpoints. A nil logger disables etcd client logs.
func NewEtcdRegistry(endpoints []string, logger *zap.Logger) (*EtcdRegistry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
		Logger:      logger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "registry: connect etcd")
	}
	return &EtcdRegistry{
		client: c,
		logger: logger,
		leases: make(map[string]registration),
	}, nil
}

func networkPrefix(network string) string {
	return KeyPrefix + network + "/"
}

func nodeKey(network, nodeURL string) string {
	return networkPrefix(network) + url.PathEscape(nodeURL)
}

// Register grants a lease of ttl seconds, stores node under it and keeps the
// lease alive until Deregister or Close.
func (r *EtcdRegistry) Register(ctx context.Context, network string, node NodeInstance, ttl int64) error {
	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return errors.Wrap(err, "registry: grant lease")
	}

	val, err := json.Marshal(node)
	if err != nil {
		return errors.Wrap(err, "registry: encode node")
	}

	key := nodeKey(network, node.URL)
	if _, err := r.client.Put(ctx, key, string(val), clientv3.WithLease(lease.ID)); err != nil {
		return errors.Wrapf(err, "registry: put %s", key)
	}

	// The keepalive outlives ctx, which only bounds the registration itself.
	kaCtx, cancel := context.WithCancel(context.Background())
	ch, err := r.client.KeepAlive(kaCtx, lease.ID)
	if err != nil {
		cancel()
		return errors.Wrap(err, "registry: keep lease alive")
	}
	go func() {
		for range ch {
		}
		r.logger.Debug("lease keepalive stopped", zap.String("key", key))
	}()

	r.mu.Lock()
	if prev, ok := r.leases[key]; ok {
		prev.cancel()
	}
	r.leases[key] = registration{lease: lease.ID, cancel: cancel}
	r.mu.Unlock()
	return nil
}

// Deregister removes the node entry and stops renewing its lease.
func (r *EtcdRegistry) Deregister(ctx context.Context, network string, nodeURL string) error {
	key := nodeKey(network, nodeURL)

	r.mu.Lock()
	reg, ok := r.leases[key]
	delete(r.leases, key)
	r.mu.Unlock()
	if ok {
		reg.cancel()
	}

	if _, err := r.client.Delete(ctx, key); err != nil {
		return errors.Wrapf(err, "registry: delete %s", key)
	}
	return nil
}

// Discover returns the nodes of network in key order. Malformed entries are
// skipped.
func (r *EtcdRegistry) Discover(ctx context.Context, network string) ([]NodeInstance, error) {
	resp, err := r.client.Get(ctx, networkPrefix(network), clientv3.WithPrefix())
	if err != nil {
		return nil, errors.Wrapf(err, "registry: list %s", network)
	}

	nodes := make([]NodeInstance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var node NodeInstance
		if err := json.Unmarshal(kv.Value, &node); err != nil {
			r.logger.Warn("skip malformed node entry", zap.ByteString("key", kv.Key), zap.Error(err))
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Watch re-reads the node list after every change under the network prefix
// (registrations, deregistrations, lease expirations).
func (r *EtcdRegistry) Watch(ctx context.Context, network string) (<-chan []NodeInstance, error) {
	ch := make(chan []NodeInstance, 1)
	watchChan := r.client.Watch(clientv3.WithRequireLeader(ctx), networkPrefix(network), clientv3.WithPrefix())

	go func() {
		defer close(ch)
		for wresp := range watchChan {
			if err := wresp.Err(); err != nil {
				r.logger.Warn("watch interrupted", zap.String("network", network), zap.Error(err))
				return
			}
			nodes, err := r.Discover(ctx, network)
			if err != nil {
				r.logger.Warn("rediscover after change", zap.String("network", network), zap.Error(err))
				continue
			}
			select {
			case ch <- nodes:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// Close stops all keepalives and closes the etcd connection. Entries
// registered here expire with their leases.
func (r *EtcdRegistry) Close() error {
	r.mu.Lock()
	for key, reg := range r.leases {
		reg.cancel()
		delete(r.leases, key)
	}
	r.mu.Unlock()
	return r.client.Close()
}
