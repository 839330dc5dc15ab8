// Package registry publishes and discovers the URLs of CKB nodes.
//
// Nodes are grouped by network ("mainnet", "testnet", "dev"). A client picks
// one of the nodes of its network and follows changes through Watch.
package registry

import (
	"context"

	"github.com/pkg/errors"
)

var ErrClosed = errors.New("registry: closed")

// NodeInstance is one published node.
type NodeInstance struct {
	URL     string `json:"url" yaml:"url"`
	Weight  int    `json:"weight" yaml:"weight"` // Weight for load balancing
	Version string `json:"version" yaml:"version"`
}

type Registry interface {
	// Register publishes node under network. The entry expires ttl seconds
	// after the registry stops renewing it.
	Register(ctx context.Context, network string, node NodeInstance, ttl int64) error
	Deregister(ctx context.Context, network string, url string) error
	Discover(ctx context.Context, network string) ([]NodeInstance, error)
	// Watch emits the full node list of network after every change, until ctx
	// is done. The channel is closed when watching stops.
	Watch(ctx context.Context, network string) (<-chan []NodeInstance, error)
	Close() error
}
