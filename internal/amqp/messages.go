package amqp

import (
	"encoding/json"
	"time"
)

// Sync operations carried by a TransactionSyncMessage.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// TransactionSyncMessage is a lightweight change event for mirroring a
// transaction to Google Sheets. It carries only the ID and operation,
// the worker fetches the full transaction from the database.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates an upsert event for the given transaction
func NewTransactionSyncMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Op:        OpUpsert,
		Timestamp: time.Now(),
	}
}

// NewTransactionDeleteMessage creates a delete event for the given transaction
func NewTransactionDeleteMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Op:        OpDelete,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON creates a message from JSON bytes
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Op == "" {
		msg.Op = OpUpsert
	}
	return &msg, nil
}
