package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportUpdatedMessage announces that a user's monthly report was persisted.
// It carries only the key; consumers reload the report from the store.
type ReportUpdatedMessage struct {
	MessageID string    `json:"messageId"`
	UserID    string    `json:"userId"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReportUpdatedMessage(userID string, year int, month time.Month) *ReportUpdatedMessage {
	return &ReportUpdatedMessage{
		MessageID: uuid.NewString(),
		UserID:    userID,
		Year:      year,
		Month:     int(month),
		Timestamp: time.Now().UTC(),
	}
}

func (m *ReportUpdatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Period returns the report month as a time.Month.
func (m *ReportUpdatedMessage) Period() (int, time.Month) {
	return m.Year, time.Month(m.Month)
}

func (m *ReportUpdatedMessage) validate() error {
	if m.UserID == "" {
		return errors.New("missing user id")
	}
	if m.Month < 1 || m.Month > 12 {
		return fmt.Errorf("invalid month %d", m.Month)
	}
	return nil
}

// ReportUpdatedMessageFromJSON decodes and validates a message body.
func ReportUpdatedMessageFromJSON(data []byte) (*ReportUpdatedMessage, error) {
	var msg ReportUpdatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
