package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ckb-rpc/ckb"
	"ckb-rpc/message"
	"ckb-rpc/protocol"
)

func newDevNode(t *testing.T) (*DevChain, *ckb.RPC) {
	srv, ts := newTestServer(t)
	chain := NewDevChain()
	_, err := srv.Register(chain)
	require.NoError(t, err)

	rpc, err := ckb.New(ts.URL)
	require.NoError(t, err)
	return chain, rpc
}

func TestDevChainTip(t *testing.T) {
	chain, rpc := newDevNode(t)
	ctx := context.Background()

	n, err := rpc.GetTipBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	chain.Mine()
	chain.Mine()

	n, err = rpc.GetTipBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	header, err := rpc.GetTipHeader(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0x2", header.Number)

	parent, err := rpc.GetBlockByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, parent.Header.Hash, header.ParentHash)

	hash, err := rpc.GetBlockHash(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, header.Hash, hash)

	block, err := rpc.GetBlock(ctx, header.Hash)
	require.NoError(t, err)
	assert.Equal(t, "0x2", block.Header.Number)

	missing, err := rpc.GetBlockByNumber(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDevChainSendTransaction(t *testing.T) {
	chain, rpc := newDevNode(t)
	ctx := context.Background()

	tx := ckb.RawTransaction{
		Outputs:     []ckb.CellOutput{{Capacity: "0x174876e800", Lock: ckb.Script{CodeHash: "0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8", HashType: "type"}}},
		OutputsData: []string{"0x"},
	}

	hash, err := rpc.SendTransaction(ctx, tx)
	require.NoError(t, err)
	assert.Len(t, hash, 66)

	pool, err := rpc.TxPoolInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0x1", pool.Pending)

	status, err := rpc.GetTransaction(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, "pending", status.TxStatus.Status)

	_, err = rpc.SendTransaction(ctx, tx)
	require.ErrorIs(t, err, protocol.ErrNoResult)
	var rpcErr *message.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -1107, rpcErr.Code)

	header := chain.Mine()

	status, err = rpc.GetTransaction(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, "committed", status.TxStatus.Status)
	require.NotNil(t, status.TxStatus.BlockHash)
	assert.Equal(t, header.Hash, *status.TxStatus.BlockHash)

	block, err := rpc.GetBlockByNumber(ctx, header.Number)
	require.NoError(t, err)
	require.Len(t, block.Transactions, 1)
	assert.Equal(t, hash, block.Transactions[0].Hash)
}

func TestDevChainInfo(t *testing.T) {
	_, rpc := newDevNode(t)
	ctx := context.Background()

	info, err := rpc.GetBlockchainInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ckb_dev", info.Chain)

	node, err := rpc.LocalNodeInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, Version, node.Version)

	peers, err := rpc.GetPeers(ctx)
	require.NoError(t, err)
	assert.Empty(t, peers)

	epoch, err := rpc.GetCurrentEpoch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0x0", epoch.Number)
	assert.Equal(t, "0x708", epoch.Length)

	future, err := rpc.GetEpochByNumber(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, future)

	cycles, err := rpc.DryRunTransaction(ctx, ckb.RawTransaction{})
	require.NoError(t, err)
	assert.Equal(t, "0x3e8", cycles.Cycles)
}
