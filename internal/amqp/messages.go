package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventType names a committed ledger mutation.
type EventType string

const (
	EventTransactionCreated  EventType = "transaction.created"
	EventTransactionUpdated  EventType = "transaction.updated"
	EventTransactionDeleted  EventType = "transaction.deleted"
	EventGoalCreated         EventType = "goal.created"
	EventGoalUpdated         EventType = "goal.updated"
	EventGoalDeleted         EventType = "goal.deleted"
	EventContributionAdded   EventType = "contribution.added"
	EventContributionRemoved EventType = "contribution.removed"
	EventGoalBalanceClamped  EventType = "goal.balance_clamped"
)

var knownEvents = map[EventType]bool{
	EventTransactionCreated:  true,
	EventTransactionUpdated:  true,
	EventTransactionDeleted:  true,
	EventGoalCreated:         true,
	EventGoalUpdated:         true,
	EventGoalDeleted:         true,
	EventContributionAdded:   true,
	EventContributionRemoved: true,
	EventGoalBalanceClamped:  true,
}

func (t EventType) Valid() bool {
	return knownEvents[t]
}

// IsTransaction reports whether the event concerns a ledger transaction.
func (t EventType) IsTransaction() bool {
	switch t {
	case EventTransactionCreated, EventTransactionUpdated, EventTransactionDeleted:
		return true
	}
	return false
}

// LedgerEvent is a lightweight notification. It carries ids and the amount
// involved; consumers fetch the full entity from the database.
type LedgerEvent struct {
	Type      EventType        `json:"type"`
	EntityID  string           `json:"entity_id"`
	GoalID    string           `json:"goal_id,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewLedgerEvent stamps the event with the current time.
func NewLedgerEvent(t EventType, entityID string) *LedgerEvent {
	return &LedgerEvent{
		Type:      t,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

func (e *LedgerEvent) WithGoal(goalID string) *LedgerEvent {
	e.GoalID = goalID
	return e
}

func (e *LedgerEvent) WithAmount(amount decimal.Decimal) *LedgerEvent {
	e.Amount = &amount
	return e
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.EntityID == "" {
		return nil, fmt.Errorf("event %s has no entity_id", e.Type)
	}
	return &e, nil
}
