package amqp

import (
	"encoding/json"
	"time"
)

// RecordAppendedMessage announces a record stored in SQLite that still has
// to be mirrored to the spreadsheet. The worker loads the record by ID.
type RecordAppendedMessage struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordAppendedMessage(id, ownerID int64) *RecordAppendedMessage {
	return &RecordAppendedMessage{
		ID:        id,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

func (m *RecordAppendedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordAppendedMessageFromJSON(data []byte) (*RecordAppendedMessage, error) {
	var msg RecordAppendedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
