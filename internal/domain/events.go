package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types published through the outbox.
type EventType string

const (
	EventAccountCreated      EventType = "econ.account.created"
	EventLedgerEntryRecorded EventType = "econ.ledger.entry.recorded"
	EventWithdrawalRequested EventType = "econ.withdrawal.requested"
	EventWithdrawalSettled   EventType = "econ.withdrawal.settled"
	EventDeviceReset         EventType = "econ.account.device.reset"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateAccount    AggregateType = "account"
	AggregateLedger     AggregateType = "ledger"
	AggregateWithdrawal AggregateType = "withdrawal"
)

// OutboxDraft is the payload written to the event_outbox table in the same
// transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// OutboxRow is a stored outbox event plus its publish-order sequence ID.
type OutboxRow struct {
	SeqID int64
	OutboxDraft
}

// NewEntryRecordedEvent creates the standard ledger event for an entry.
func NewEntryRecordedEvent(entry *LedgerEntry) OutboxDraft {
	payload, _ := json.Marshal(entry)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateLedger,
		AggregateID:   entry.AccountID.String(),
		EventType:     EventLedgerEntryRecorded,
		PartitionKey:  entry.AccountID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewAccountCreatedEvent creates an account lifecycle event.
func NewAccountCreatedEvent(accountID uuid.UUID, email string) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"account_id": accountID.String(),
		"email":      email,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateAccount,
		AggregateID:   accountID.String(),
		EventType:     EventAccountCreated,
		PartitionKey:  accountID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewWithdrawalEvent creates a withdrawal lifecycle event.
func NewWithdrawalEvent(w *Withdrawal, evtType EventType) OutboxDraft {
	payload, _ := json.Marshal(w)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWithdrawal,
		AggregateID:   w.ID.String(),
		EventType:     evtType,
		PartitionKey:  w.AccountID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
