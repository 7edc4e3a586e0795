package store

import "github.com/Mohsinsiddi/w3dash/internal/token"

// EventType classifies a history entry.
type EventType string

const (
	EventMint     EventType = "Mint"
	EventTransfer EventType = "Transfer"
	EventApprove  EventType = "Approve"
)

// Status is an event's lifecycle state. Ingested events are always Success;
// speculative entries start Pending and end Success or Failed.
type Status string

const (
	StatusPending Status = "Pending"
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
)

// Event is one normalized on-chain action relevant to the connected account,
// either ingested from a confirmed log or synthesized speculatively by the
// orchestrator. Its identity key is ID (the transaction hash): a confirmed
// event with the same ID supersedes a speculative one.
type Event struct {
	ID     string
	Type   EventType
	Token  token.Symbol
	Amount string // decimal string, already scaled by token decimals
	From   string // sender; owner for approvals; zero address for mints
	To     string // recipient; spender for approvals
	Status Status
	TxHash string
	Block  uint64
}
