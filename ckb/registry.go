package ckb

import (
	"ckb-rpc/client"
	"ckb-rpc/formatter"
)

type params = []client.ParamFormatter

// DefaultMethods returns the methods a CKB node serves, in a fresh slice.
func DefaultMethods() []client.Descriptor {
	return []client.Descriptor{
		{
			Name:            "getBlockByNumber",
			WireMethod:      "get_block_by_number",
			ParamFormatters: params{formatter.ToNumber},
			ResultFormatter: formatter.Into[*Block],
		},
		{
			Name:            "getBlock",
			WireMethod:      "get_block",
			ParamFormatters: params{formatter.ToHash},
			ResultFormatter: formatter.Into[*Block],
		},
		{
			Name:            "getTransaction",
			WireMethod:      "get_transaction",
			ParamFormatters: params{formatter.ToHash, formatter.ToNumber, formatter.ToNumber},
			ResultFormatter: formatter.Into[*TransactionWithStatus],
		},
		{
			Name:            "getBlockHash",
			WireMethod:      "get_block_hash",
			ParamFormatters: params{formatter.ToNumber},
		},
		{
			Name:            "getTipHeader",
			WireMethod:      "get_tip_header",
			ParamFormatters: params{},
			ResultFormatter: formatter.Into[*Header],
		},
		{
			Name:            "getCellsByLockHash",
			WireMethod:      "get_cells_by_lock_hash",
			ParamFormatters: params{formatter.ToHash, formatter.ToNumber, formatter.ToNumber},
			ResultFormatter: formatter.Into[[]CellIncludingOutPoint],
		},
		{
			Name:            "getLiveCell",
			WireMethod:      "get_live_cell",
			ParamFormatters: params{ToOutPoint},
			ResultFormatter: formatter.Into[*CellWithStatus],
		},
		{
			Name:            "getTipBlockNumber",
			WireMethod:      "get_tip_block_number",
			ParamFormatters: params{},
			ResultFormatter: formatter.HexToNumber,
		},
		{
			Name:            "getBlockchainInfo",
			WireMethod:      "get_blockchain_info",
			ParamFormatters: params{},
			ResultFormatter: formatter.Into[*BlockchainInfo],
		},
		{
			Name:            "sendTransaction",
			WireMethod:      "send_transaction",
			ParamFormatters: params{ToRawTransaction},
			ResultFormatter: formatter.ToHash,
		},
		{
			Name:            "localNodeInfo",
			WireMethod:      "local_node_info",
			ParamFormatters: params{},
			ResultFormatter: formatter.Into[*NodeInfo],
		},
		{
			Name:            "txPoolInfo",
			WireMethod:      "tx_pool_info",
			ParamFormatters: params{},
			ResultFormatter: formatter.Into[*TxPoolInfo],
		},
		{
			Name:            "getPeers",
			WireMethod:      "get_peers",
			ParamFormatters: params{},
			ResultFormatter: formatter.Into[[]NodeInfo],
		},
		{
			Name:            "getPeersState",
			WireMethod:      "get_peers_state",
			ParamFormatters: params{},
			ResultFormatter: formatter.Into[[]PeerState],
		},
		{
			Name:            "getCurrentEpoch",
			WireMethod:      "get_current_epoch",
			ParamFormatters: params{},
			ResultFormatter: formatter.Into[*Epoch],
		},
		{
			Name:            "getEpochByNumber",
			WireMethod:      "get_epoch_by_number",
			ParamFormatters: params{formatter.ToNumber},
			ResultFormatter: formatter.Into[*Epoch],
		},
		{
			Name:            "dryRunTransaction",
			WireMethod:      "dry_run_transaction",
			ParamFormatters: params{ToRawTransaction},
			ResultFormatter: formatter.Into[*DryRunResult],
		},
		{
			Name:            "deindexLockHash",
			WireMethod:      "deindex_lock_hash",
			ParamFormatters: params{formatter.ToHash},
		},
		{
			Name:            "getLiveCellsByLockHash",
			WireMethod:      "get_live_cells_by_lock_hash",
			ParamFormatters: params{formatter.ToHash, formatter.ToPageNumber, formatter.ToPageSize, formatter.ToReverseOrder},
			ResultFormatter: formatter.Into[[]LiveCell],
		},
		{
			Name:            "getLockHashIndexStates",
			WireMethod:      "get_lock_hash_index_states",
			ParamFormatters: params{},
			ResultFormatter: formatter.Into[[]LockHashIndexState],
		},
		{
			Name:            "getTransactionsByLockHash",
			WireMethod:      "get_transactions_by_lock_hash",
			ParamFormatters: params{formatter.ToHash, formatter.ToPageNumber, formatter.ToPageSize, formatter.ToReverseOrder},
			ResultFormatter: formatter.Into[[]CellTransaction],
		},
		{
			Name:            "indexLockHash",
			WireMethod:      "index_lock_hash",
			ParamFormatters: params{formatter.ToHash, formatter.ToNumber},
			ResultFormatter: formatter.Into[*LockHashIndexState],
		},
	}
}
