// Package discovery keeps a client pointed at a live node of its network.
//
// A Watcher reads the node list from a registry.Registry, lets a
// loadbalance.Balancer choose one node and switches the client to it. It
// repeats the choice whenever the registry reports a change.
package discovery

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"ckb-rpc/client"
	"ckb-rpc/loadbalance"
	"ckb-rpc/registry"
)

// Target is what a Watcher steers; *client.Client and *ckb.RPC satisfy it.
type Target interface {
	Node() client.Node
	SetNode(client.Node)
}

type Watcher struct {
	reg      registry.Registry
	network  string
	balancer loadbalance.Balancer
	target   Target
	logger   logrus.FieldLogger

	mu    sync.RWMutex
	nodes []registry.NodeInstance
}

func NewWatcher(reg registry.Registry, network string, balancer loadbalance.Balancer, target Target, logger logrus.FieldLogger) *Watcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Watcher{
		reg:      reg,
		network:  network,
		balancer: balancer,
		target:   target,
		logger:   logger.WithField("network", network),
	}
}

// Refresh reads the node list once and applies it.
func (w *Watcher) Refresh(ctx context.Context) error {
	nodes, err := w.reg.Discover(ctx, w.network)
	if err != nil {
		return errors.Wrap(err, "discovery: refresh")
	}
	return w.Update(nodes)
}

// Update replaces the node list and points the target at the balancer's
// choice. With no nodes the target keeps its current node.
func (w *Watcher) Update(nodes []registry.NodeInstance) error {
	w.mu.Lock()
	w.nodes = append(w.nodes[:0:0], nodes...)
	w.mu.Unlock()

	if len(nodes) == 0 {
		w.logger.WithField("node", w.target.Node().URL).Warn("no nodes published, keeping current node")
		return nil
	}
	picked, err := w.balancer.Pick(nodes)
	if err != nil {
		return errors.Wrap(err, "discovery: pick node")
	}
	if current := w.target.Node(); current.URL != picked.URL {
		w.target.SetNode(client.Node{URL: picked.URL})
		w.logger.WithFields(logrus.Fields{
			"from":     current.URL,
			"to":       picked.URL,
			"balancer": w.balancer.Name(),
		}).Info("switched node")
	}
	return nil
}

// Nodes returns the last node list seen.
func (w *Watcher) Nodes() []registry.NodeInstance {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]registry.NodeInstance, len(w.nodes))
	copy(out, w.nodes)
	return out
}

// Run refreshes once, then follows registry changes until ctx is done or the
// registry stops the watch. It returns ctx.Err() on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	ch, err := w.reg.Watch(ctx, w.network)
	if err != nil {
		return errors.Wrap(err, "discovery: watch")
	}
	if err := w.Refresh(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case nodes, ok := <-ch:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("discovery: watch closed")
			}
			if err := w.Update(nodes); err != nil {
				w.logger.WithError(err).Warn("apply node list")
			}
		}
	}
}
