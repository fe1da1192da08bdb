package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"mifi/internal/core"
)

// BudgetSavedMessage announces that a month's budget was stored. Consumers
// re-read the budget; the message carries only the key and version.
type BudgetSavedMessage struct {
	Month     string    `json:"month"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetSavedMessage(month core.MonthKey, version int64) *BudgetSavedMessage {
	return &BudgetSavedMessage{
		Month:     month.String(),
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *BudgetSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthKey parses the month the message refers to.
func (m *BudgetSavedMessage) MonthKey() (core.MonthKey, error) {
	return core.ParseMonthKey(m.Month)
}

// BudgetSavedMessageFromJSON decodes and validates a message.
func BudgetSavedMessageFromJSON(data []byte) (*BudgetSavedMessage, error) {
	var msg BudgetSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := msg.MonthKey(); err != nil {
		return nil, fmt.Errorf("budget saved message: %w", err)
	}
	if msg.Version < 1 {
		return nil, fmt.Errorf("budget saved message: invalid version %d", msg.Version)
	}
	return &msg, nil
}
