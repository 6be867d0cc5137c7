package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"familybudget/internal/core"
)

// MonthSavedMessage announces that a month snapshot was recorded. It
// carries the full snapshot so consumers need no access to the store.
type MonthSavedMessage struct {
	Month         string     `json:"month"`
	TotalIncome   core.Money `json:"totalIncome"`
	TotalExpenses core.Money `json:"totalExpenses"`
	SavedAt       time.Time  `json:"savedAt"`
}

func NewMonthSavedMessage(snap core.MonthSnapshot, savedAt time.Time) *MonthSavedMessage {
	return &MonthSavedMessage{
		Month:         snap.MonthKey,
		TotalIncome:   snap.TotalIncome,
		TotalExpenses: snap.TotalExpenses,
		SavedAt:       savedAt,
	}
}

// Snapshot converts the message back to the domain value.
func (m *MonthSavedMessage) Snapshot() core.MonthSnapshot {
	return core.MonthSnapshot{
		MonthKey:      m.Month,
		TotalIncome:   m.TotalIncome,
		TotalExpenses: m.TotalExpenses,
	}
}

func (m *MonthSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MonthSavedMessageFromJSON(data []byte) (*MonthSavedMessage, error) {
	var msg MonthSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Month == "" {
		return nil, errors.New("month saved message without month")
	}
	return &msg, nil
}
