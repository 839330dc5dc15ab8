// Package ckb binds the CKB node's JSON-RPC methods.
//
// DefaultMethods is the descriptor table; RPC wraps a client built from it
// with one typed Go method per entry.
package ckb

import (
	"context"

	"github.com/pkg/errors"

	"ckb-rpc/client"
)

// DefaultNodeURL is the RPC address a local CKB node listens on.
const DefaultNodeURL = "http://localhost:8114"

// RPC is a client bound to DefaultMethods.
type RPC struct {
	*client.Client
}

func New(url string, opts ...client.Option) (*RPC, error) {
	c, err := client.New(url, DefaultMethods(), opts...)
	if err != nil {
		return nil, err
	}
	return &RPC{Client: c}, nil
}

func call[T any](ctx context.Context, c *client.Client, name string, args ...any) (T, error) {
	var zero T
	v, err := c.Call(ctx, name, args...)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, errors.Errorf("ckb: %s: unexpected result type %T", name, v)
	}
	return out, nil
}

// GetBlockByNumber returns nil when the node has no block at that height.
func (r *RPC) GetBlockByNumber(ctx context.Context, number any) (*Block, error) {
	return call[*Block](ctx, r.Client, "getBlockByNumber", number)
}

func (r *RPC) GetBlock(ctx context.Context, hash any) (*Block, error) {
	return call[*Block](ctx, r.Client, "getBlock", hash)
}

func (r *RPC) GetTransaction(ctx context.Context, hash any) (*TransactionWithStatus, error) {
	return call[*TransactionWithStatus](ctx, r.Client, "getTransaction", hash)
}

func (r *RPC) GetBlockHash(ctx context.Context, number any) (string, error) {
	return call[string](ctx, r.Client, "getBlockHash", number)
}

func (r *RPC) GetTipHeader(ctx context.Context) (*Header, error) {
	return call[*Header](ctx, r.Client, "getTipHeader")
}

// GetCellsByLockHash lists cells of a lock between two block numbers, inclusive.
func (r *RPC) GetCellsByLockHash(ctx context.Context, lockHash, from, to any) ([]CellIncludingOutPoint, error) {
	return call[[]CellIncludingOutPoint](ctx, r.Client, "getCellsByLockHash", lockHash, from, to)
}

func (r *RPC) GetLiveCell(ctx context.Context, outPoint OutPoint) (*CellWithStatus, error) {
	return call[*CellWithStatus](ctx, r.Client, "getLiveCell", outPoint)
}

func (r *RPC) GetTipBlockNumber(ctx context.Context) (uint64, error) {
	return call[uint64](ctx, r.Client, "getTipBlockNumber")
}

func (r *RPC) GetBlockchainInfo(ctx context.Context) (*BlockchainInfo, error) {
	return call[*BlockchainInfo](ctx, r.Client, "getBlockchainInfo")
}

// SendTransaction submits tx to the pool and returns its hash.
func (r *RPC) SendTransaction(ctx context.Context, tx RawTransaction) (string, error) {
	return call[string](ctx, r.Client, "sendTransaction", tx)
}

func (r *RPC) LocalNodeInfo(ctx context.Context) (*NodeInfo, error) {
	return call[*NodeInfo](ctx, r.Client, "localNodeInfo")
}

func (r *RPC) TxPoolInfo(ctx context.Context) (*TxPoolInfo, error) {
	return call[*TxPoolInfo](ctx, r.Client, "txPoolInfo")
}

func (r *RPC) GetPeers(ctx context.Context) ([]NodeInfo, error) {
	return call[[]NodeInfo](ctx, r.Client, "getPeers")
}

func (r *RPC) GetPeersState(ctx context.Context) ([]PeerState, error) {
	return call[[]PeerState](ctx, r.Client, "getPeersState")
}

func (r *RPC) GetCurrentEpoch(ctx context.Context) (*Epoch, error) {
	return call[*Epoch](ctx, r.Client, "getCurrentEpoch")
}

func (r *RPC) GetEpochByNumber(ctx context.Context, number any) (*Epoch, error) {
	return call[*Epoch](ctx, r.Client, "getEpochByNumber", number)
}

func (r *RPC) DryRunTransaction(ctx context.Context, tx RawTransaction) (*DryRunResult, error) {
	return call[*DryRunResult](ctx, r.Client, "dryRunTransaction", tx)
}

func (r *RPC) DeindexLockHash(ctx context.Context, lockHash any) error {
	_, err := r.Client.Call(ctx, "deindexLockHash", lockHash)
	return err
}

// GetLiveCellsByLockHash pages through live cells of a lock. Page sizes above
// formatter.MaxPageSize are rejected before anything is sent.
func (r *RPC) GetLiveCellsByLockHash(ctx context.Context, lockHash, page, perPage any, reverse bool) ([]LiveCell, error) {
	return call[[]LiveCell](ctx, r.Client, "getLiveCellsByLockHash", lockHash, page, perPage, reverse)
}

func (r *RPC) GetLockHashIndexStates(ctx context.Context) ([]LockHashIndexState, error) {
	return call[[]LockHashIndexState](ctx, r.Client, "getLockHashIndexStates")
}

func (r *RPC) GetTransactionsByLockHash(ctx context.Context, lockHash, page, perPage any, reverse bool) ([]CellTransaction, error) {
	return call[[]CellTransaction](ctx, r.Client, "getTransactionsByLockHash", lockHash, page, perPage, reverse)
}

// IndexLockHash starts indexing a lock, optionally from a past block number.
// A nil indexFrom leaves the choice to the node.
func (r *RPC) IndexLockHash(ctx context.Context, lockHash, indexFrom any) (*LockHashIndexState, error) {
	if indexFrom == nil {
		return call[*LockHashIndexState](ctx, r.Client, "indexLockHash", lockHash)
	}
	return call[*LockHashIndexState](ctx, r.Client, "indexLockHash", lockHash, indexFrom)
}
