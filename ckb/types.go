package ckb

// Quantities (capacities, block numbers, indexes) stay in the node's 0x-hex
// form; hashes are 0x-prefixed 32-byte hex strings.

type Script struct {
	CodeHash string   `json:"code_hash"`
	HashType string   `json:"hash_type"`
	Args     []string `json:"args"`
}

type OutPoint struct {
	TxHash string `json:"tx_hash"`
	Index  string `json:"index"`
}

type CellDep struct {
	OutPoint OutPoint `json:"out_point"`
	DepType  string   `json:"dep_type"`
}

type CellInput struct {
	PreviousOutput OutPoint `json:"previous_output"`
	Since          string   `json:"since"`
}

type CellOutput struct {
	Capacity string  `json:"capacity"`
	Lock     Script  `json:"lock"`
	Type     *Script `json:"type"`
}

type RawTransaction struct {
	Version     string       `json:"version"`
	CellDeps    []CellDep    `json:"cell_deps"`
	HeaderDeps  []string     `json:"header_deps"`
	Inputs      []CellInput  `json:"inputs"`
	Outputs     []CellOutput `json:"outputs"`
	OutputsData []string     `json:"outputs_data"`
	Witnesses   []string     `json:"witnesses"`
}

type Transaction struct {
	RawTransaction
	Hash string `json:"hash"`
}

type TxStatus struct {
	Status    string  `json:"status"`
	BlockHash *string `json:"block_hash"`
}

type TransactionWithStatus struct {
	Transaction Transaction `json:"transaction"`
	TxStatus    TxStatus    `json:"tx_status"`
}

type Header struct {
	Version          string `json:"version"`
	CompactTarget    string `json:"compact_target"`
	Timestamp        string `json:"timestamp"`
	Number           string `json:"number"`
	Epoch            string `json:"epoch"`
	ParentHash       string `json:"parent_hash"`
	TransactionsRoot string `json:"transactions_root"`
	ProposalsHash    string `json:"proposals_hash"`
	UnclesHash       string `json:"uncles_hash"`
	Dao              string `json:"dao"`
	Nonce            string `json:"nonce"`
	Hash             string `json:"hash"`
}

type UncleBlock struct {
	Header    Header   `json:"header"`
	Proposals []string `json:"proposals"`
}

type Block struct {
	Header       Header        `json:"header"`
	Uncles       []UncleBlock  `json:"uncles"`
	Transactions []Transaction `json:"transactions"`
	Proposals    []string      `json:"proposals"`
}

type CellIncludingOutPoint struct {
	Capacity string   `json:"capacity"`
	Lock     Script   `json:"lock"`
	OutPoint OutPoint `json:"out_point"`
}

type CellWithStatus struct {
	Cell   *CellOutput `json:"cell"`
	Status string      `json:"status"`
}

type AlertMessage struct {
	ID          string `json:"id"`
	Priority    string `json:"priority"`
	NoticeUntil string `json:"notice_until"`
	Message     string `json:"message"`
}

type BlockchainInfo struct {
	Chain                  string         `json:"chain"`
	MedianTime             string         `json:"median_time"`
	Epoch                  string         `json:"epoch"`
	Difficulty             string         `json:"difficulty"`
	IsInitialBlockDownload bool           `json:"is_initial_block_download"`
	Alerts                 []AlertMessage `json:"alerts"`
}

type NodeAddress struct {
	Address string `json:"address"`
	Score   string `json:"score"`
}

type NodeInfo struct {
	Version    string        `json:"version"`
	NodeID     string        `json:"node_id"`
	Addresses  []NodeAddress `json:"addresses"`
	IsOutbound *bool         `json:"is_outbound"`
}

type TxPoolInfo struct {
	Pending          string `json:"pending"`
	Proposed         string `json:"proposed"`
	Orphan           string `json:"orphan"`
	TotalTxSize      string `json:"total_tx_size"`
	TotalTxCycles    string `json:"total_tx_cycles"`
	LastTxsUpdatedAt string `json:"last_txs_updated_at"`
}

type PeerState struct {
	LastUpdated    string `json:"last_updated"`
	BlocksInFlight string `json:"blocks_in_flight"`
	Peer           string `json:"peer"`
}

type Epoch struct {
	Number        string `json:"number"`
	StartNumber   string `json:"start_number"`
	Length        string `json:"length"`
	CompactTarget string `json:"compact_target"`
}

type DryRunResult struct {
	Cycles string `json:"cycles"`
}

// TransactionPoint locates a cell by the transaction that created or consumed it.
type TransactionPoint struct {
	BlockNumber string `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	Index       string `json:"index"`
}

type LiveCell struct {
	CellOutput CellOutput       `json:"cell_output"`
	CreatedBy  TransactionPoint `json:"created_by"`
}

type CellTransaction struct {
	CreatedBy  TransactionPoint  `json:"created_by"`
	ConsumedBy *TransactionPoint `json:"consumed_by"`
}

type LockHashIndexState struct {
	LockHash    string `json:"lock_hash"`
	BlockNumber string `json:"block_number"`
	BlockHash   string `json:"block_hash"`
}
