package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// LedgerOp names the mutation that produced a ledger event.
type LedgerOp string

const (
	OpCreated   LedgerOp = "created"
	OpUpdated   LedgerOp = "updated"
	OpDeleted   LedgerOp = "deleted"
	OpRecompute LedgerOp = "recompute"
)

// LedgerEvent announces a committed ledger mutation. It carries only ids;
// consumers re-read whatever they need from the database.
type LedgerEvent struct {
	Op            LedgerOp  `json:"op"`
	OwnerID       int64     `json:"owner_id"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	AccountIDs    []int64   `json:"account_ids"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps an event with the current time.
func NewLedgerEvent(op LedgerOp, ownerID, transactionID int64, accountIDs []int64) *LedgerEvent {
	return &LedgerEvent{
		Op:            op,
		OwnerID:       ownerID,
		TransactionID: transactionID,
		AccountIDs:    accountIDs,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and sanity-checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Op {
	case OpCreated, OpUpdated, OpDeleted, OpRecompute:
	default:
		return nil, fmt.Errorf("unknown ledger op %q", msg.Op)
	}
	if msg.OwnerID <= 0 {
		return nil, fmt.Errorf("ledger event without owner")
	}
	return &msg, nil
}
