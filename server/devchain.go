package server

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"ckb-rpc/ckb"
	"ckb-rpc/message"
)

// EpochLength is the number of blocks per epoch on the dev chain.
const EpochLength = 1800

// DevChain is an in-memory chain serving the read and submit methods of a
// CKB node. Register it on a Server:
//
//	chain := server.NewDevChain()
//	srv.Register(chain)
//
// Sent transactions stay pending until Mine puts them into a block.
type DevChain struct {
	mu      sync.RWMutex
	blocks  []ckb.Block
	byHash  map[string]int
	txs     map[string]*ckb.TransactionWithStatus
	pending []ckb.Transaction
}

// NewDevChain returns a chain holding only the genesis block.
func NewDevChain() *DevChain {
	c := &DevChain{
		byHash: make(map[string]int),
		txs:    make(map[string]*ckb.TransactionWithStatus),
	}
	c.appendBlock(nil)
	return c
}

// Mine seals the pending transactions into a new tip block and returns its header.
func (c *DevChain) Mine() ckb.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	txs := c.pending
	c.pending = nil
	return c.appendBlock(txs)
}

func (c *DevChain) appendBlock(txs []ckb.Transaction) ckb.Header {
	number := uint64(len(c.blocks))
	parent := hexutil.Encode(make([]byte, 32))
	if number > 0 {
		parent = c.blocks[number-1].Header.Hash
	}
	if txs == nil {
		txs = []ckb.Transaction{}
	}

	header := ckb.Header{
		Version:          "0x0",
		CompactTarget:    "0x1e083126",
		Timestamp:        hexutil.EncodeUint64(uint64(time.Now().UnixMilli())),
		Number:           hexutil.EncodeUint64(number),
		Epoch:            hexutil.EncodeUint64(number / EpochLength),
		ParentHash:       parent,
		TransactionsRoot: txRoot(txs),
		ProposalsHash:    hexutil.Encode(make([]byte, 32)),
		UnclesHash:       hexutil.Encode(make([]byte, 32)),
		Dao:              hexutil.Encode(make([]byte, 32)),
		Nonce:            "0x0",
	}
	header.Hash = hashOf(header)

	c.blocks = append(c.blocks, ckb.Block{
		Header:       header,
		Uncles:       []ckb.UncleBlock{},
		Transactions: txs,
		Proposals:    []string{},
	})
	c.byHash[header.Hash] = int(number)

	blockHash := header.Hash
	for _, tx := range txs {
		c.txs[tx.Hash] = &ckb.TransactionWithStatus{
			Transaction: tx,
			TxStatus:    ckb.TxStatus{Status: "committed", BlockHash: &blockHash},
		}
	}
	return header
}

func hashOf(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(data).Hex()
}

func txRoot(txs []ckb.Transaction) string {
	hashes := make([]string, len(txs))
	for i, tx := range txs {
		hashes[i] = tx.Hash
	}
	return crypto.Keccak256Hash([]byte(strings.Join(hashes, ""))).Hex()
}

func parseNumber(s string) (uint64, error) {
	n, err := hexutil.DecodeUint64(s)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidParams, "number %q: %v", s, err)
	}
	return n, nil
}

func (c *DevChain) tip() *ckb.Block {
	return &c.blocks[len(c.blocks)-1]
}

func (c *DevChain) GetTipBlockNumber(ctx context.Context) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tip().Header.Number, nil
}

func (c *DevChain) GetTipHeader(ctx context.Context) (*ckb.Header, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h := c.tip().Header
	return &h, nil
}

// GetBlockByNumber returns null for heights above the tip.
func (c *DevChain) GetBlockByNumber(ctx context.Context, number string) (*ckb.Block, error) {
	n, err := parseNumber(number)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n >= uint64(len(c.blocks)) {
		return nil, nil
	}
	b := c.blocks[n]
	return &b, nil
}

func (c *DevChain) GetBlockHash(ctx context.Context, number string) (*string, error) {
	b, err := c.GetBlockByNumber(ctx, number)
	if err != nil || b == nil {
		return nil, err
	}
	return &b.Header.Hash, nil
}

func (c *DevChain) GetBlock(ctx context.Context, hash string) (*ckb.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.byHash[strings.ToLower(hash)]
	if !ok {
		return nil, nil
	}
	b := c.blocks[n]
	return &b, nil
}

func (c *DevChain) GetTransaction(ctx context.Context, hash string) (*ckb.TransactionWithStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hash = strings.ToLower(hash)
	if tx, ok := c.txs[hash]; ok {
		out := *tx
		return &out, nil
	}
	for _, tx := range c.pending {
		if tx.Hash == hash {
			return &ckb.TransactionWithStatus{Transaction: tx, TxStatus: ckb.TxStatus{Status: "pending"}}, nil
		}
	}
	return nil, nil
}

// SendTransaction adds tx to the pool. Sending the same transaction twice fails.
func (c *DevChain) SendTransaction(ctx context.Context, tx ckb.RawTransaction) (string, error) {
	hash := hashOf(tx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.txs[hash]; ok {
		return "", &message.RPCError{Code: -1107, Message: "PoolRejectedDuplicatedTransaction: " + hash}
	}
	for _, p := range c.pending {
		if p.Hash == hash {
			return "", &message.RPCError{Code: -1107, Message: "PoolRejectedDuplicatedTransaction: " + hash}
		}
	}
	c.pending = append(c.pending, ckb.Transaction{RawTransaction: tx, Hash: hash})
	return hash, nil
}

// DryRunTransaction charges a fixed number of cycles per input.
func (c *DevChain) DryRunTransaction(ctx context.Context, tx ckb.RawTransaction) (*ckb.DryRunResult, error) {
	return &ckb.DryRunResult{Cycles: hexutil.EncodeUint64(uint64(1000 * (len(tx.Inputs) + 1)))}, nil
}

func (c *DevChain) GetBlockchainInfo(ctx context.Context) (*ckb.BlockchainInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tip := c.tip().Header
	return &ckb.BlockchainInfo{
		Chain:      "ckb_dev",
		MedianTime: tip.Timestamp,
		Epoch:      tip.Epoch,
		Difficulty: "0x100",
		Alerts:     []ckb.AlertMessage{},
	}, nil
}

func (c *DevChain) LocalNodeInfo(ctx context.Context) (*ckb.NodeInfo, error) {
	return &ckb.NodeInfo{
		Version:   Version,
		NodeID:    "QmDevChain",
		Addresses: []ckb.NodeAddress{},
	}, nil
}

func (c *DevChain) TxPoolInfo(ctx context.Context) (*ckb.TxPoolInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &ckb.TxPoolInfo{
		Pending:          hexutil.EncodeUint64(uint64(len(c.pending))),
		Proposed:         "0x0",
		Orphan:           "0x0",
		TotalTxSize:      "0x0",
		TotalTxCycles:    "0x0",
		LastTxsUpdatedAt: c.tip().Header.Timestamp,
	}, nil
}

func (c *DevChain) GetPeers(ctx context.Context) ([]ckb.NodeInfo, error) {
	return []ckb.NodeInfo{}, nil
}

func (c *DevChain) GetPeersState(ctx context.Context) ([]ckb.PeerState, error) {
	return []ckb.PeerState{}, nil
}

func (c *DevChain) GetCurrentEpoch(ctx context.Context) (*ckb.Epoch, error) {
	c.mu.RLock()
	tip := uint64(len(c.blocks) - 1)
	c.mu.RUnlock()
	return epoch(tip / EpochLength), nil
}

// GetEpochByNumber returns null for epochs after the current one.
func (c *DevChain) GetEpochByNumber(ctx context.Context, number string) (*ckb.Epoch, error) {
	n, err := parseNumber(number)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	tip := uint64(len(c.blocks) - 1)
	c.mu.RUnlock()
	if n > tip/EpochLength {
		return nil, nil
	}
	return epoch(n), nil
}

func epoch(n uint64) *ckb.Epoch {
	return &ckb.Epoch{
		Number:        hexutil.EncodeUint64(n),
		StartNumber:   hexutil.EncodeUint64(n * EpochLength),
		Length:        hexutil.EncodeUint64(EpochLength),
		CompactTarget: "0x1e083126",
	}
}
