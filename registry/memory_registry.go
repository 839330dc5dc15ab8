package registry

import (
	"context"
	"sort"
	"sync"
)

// MemoryRegistry keeps nodes in process. Entries never expire; ttl is ignored.
type MemoryRegistry struct {
	mu       sync.Mutex
	closed   bool
	done     chan struct{}
	networks map[string]map[string]NodeInstance
	watchers map[string][]chan []NodeInstance
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		done:     make(chan struct{}),
		networks: make(map[string]map[string]NodeInstance),
		watchers: make(map[string][]chan []NodeInstance),
	}
}

func (r *MemoryRegistry) Register(ctx context.Context, network string, node NodeInstance, ttl int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	nodes, ok := r.networks[network]
	if !ok {
		nodes = make(map[string]NodeInstance)
		r.networks[network] = nodes
	}
	nodes[node.URL] = node
	r.notifyLocked(network)
	return nil
}

func (r *MemoryRegistry) Deregister(ctx context.Context, network string, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if _, ok := r.networks[network][url]; !ok {
		return nil
	}
	delete(r.networks[network], url)
	r.notifyLocked(network)
	return nil
}

func (r *MemoryRegistry) Discover(ctx context.Context, network string) ([]NodeInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	return r.snapshotLocked(network), nil
}

func (r *MemoryRegistry) Watch(ctx context.Context, network string) (<-chan []NodeInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	ch := make(chan []NodeInstance, 1)
	r.watchers[network] = append(r.watchers[network], ch)

	go func() {
		select {
		case <-ctx.Done():
		case <-r.done:
			return
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		r.removeWatcherLocked(network, ch)
	}()
	return ch, nil
}

func (r *MemoryRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	close(r.done)
	for network, chans := range r.watchers {
		for _, ch := range chans {
			close(ch)
		}
		delete(r.watchers, network)
	}
	return nil
}

func (r *MemoryRegistry) snapshotLocked(network string) []NodeInstance {
	nodes := make([]NodeInstance, 0, len(r.networks[network]))
	for _, n := range r.networks[network] {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].URL < nodes[j].URL
	})
	return nodes
}

// notifyLocked replaces any list a slow watcher has not consumed yet, so
// watchers only ever see the latest state.
func (r *MemoryRegistry) notifyLocked(network string) {
	for _, ch := range r.watchers[network] {
		select {
		case <-ch:
		default:
		}
		ch <- r.snapshotLocked(network)
	}
}

func (r *MemoryRegistry) removeWatcherLocked(network string, ch chan []NodeInstance) {
	chans := r.watchers[network]
	for i, c := range chans {
		if c == ch {
			r.watchers[network] = append(chans[:i], chans[i+1:]...)
			close(ch)
			return
		}
	}
}
