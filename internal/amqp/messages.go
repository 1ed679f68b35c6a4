package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Operation string

const (
	OperationCreated Operation = "created"
	OperationUpdated Operation = "updated"
	OperationDeleted Operation = "deleted"
)

var ErrMalformedMessage = errors.New("malformed message")

// TransactionChangedMessage tells consumers which years a write touched.
// It carries no amounts; consumers reload what they need from the store.
type TransactionChangedMessage struct {
	ID           int64     `json:"id"`
	Operation    Operation `json:"operation"`
	Year         int       `json:"year"`
	PreviousYear int       `json:"previousYear,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewTransactionChangedMessage builds a message for a write on id. previousYear
// is the year the transaction had before an update, or 0.
func NewTransactionChangedMessage(id int64, op Operation, year, previousYear int) *TransactionChangedMessage {
	if previousYear == year {
		previousYear = 0
	}
	return &TransactionChangedMessage{
		ID:           id,
		Operation:    op,
		Year:         year,
		PreviousYear: previousYear,
		Timestamp:    time.Now().UTC(),
	}
}

// Years returns the distinct years whose aggregates changed.
func (m *TransactionChangedMessage) Years() []int {
	if m.PreviousYear != 0 && m.PreviousYear != m.Year {
		return []int{m.Year, m.PreviousYear}
	}
	return []int{m.Year}
}

func (m *TransactionChangedMessage) Validate() error {
	switch m.Operation {
	case OperationCreated, OperationUpdated, OperationDeleted:
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrMalformedMessage, m.Operation)
	}
	if m.ID <= 0 {
		return fmt.Errorf("%w: invalid id %d", ErrMalformedMessage, m.ID)
	}
	if m.Year < 1 || m.Year > 9999 {
		return fmt.Errorf("%w: invalid year %d", ErrMalformedMessage, m.Year)
	}
	if m.PreviousYear < 0 || m.PreviousYear > 9999 {
		return fmt.Errorf("%w: invalid previous year %d", ErrMalformedMessage, m.PreviousYear)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *TransactionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangedMessageFromJSON decodes and validates a message body.
func TransactionChangedMessageFromJSON(data []byte) (*TransactionChangedMessage, error) {
	var msg TransactionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
