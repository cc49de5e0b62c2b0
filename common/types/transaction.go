package types

import "math/big"

// CallData describes a contract call ready to be signed and submitted.
//
// Fields:
// - ChainID: the chain the call targets.
// - To: the recipient contract or account address.
// - Value: the native amount attached to the call.
// - Data: the ABI-encoded input data.
// - GasLimit: an explicit gas limit, or 0 to estimate at submission time.
type CallData struct {
	ChainID  uint64
	To       string
	Value    *big.Int
	Data     []byte
	GasLimit uint64
}

// SubmittedTx represents a transaction accepted by the mempool.
//
// Fields:
// - Hash: the hash of the submitted transaction.
// - From: the address the transaction was sent from.
// - Nonce: the account nonce used.
// - ChainID: the chain the transaction was submitted to.
type SubmittedTx struct {
	Hash    string
	From    string
	Nonce   uint64
	ChainID uint64
}

// ReceiptStatus is the mined outcome of a transaction.
type ReceiptStatus int

const (
	// ReceiptReverted indicates the transaction was mined but reverted.
	ReceiptReverted ReceiptStatus = iota
	// ReceiptSuccessful indicates the transaction was mined successfully.
	ReceiptSuccessful
)

// Receipt is the mined result of a submitted transaction.
type Receipt struct {
	TxHash      string
	Status      ReceiptStatus
	BlockNumber uint64
	GasUsed     uint64
}
