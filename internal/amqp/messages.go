package amqp

import (
	"encoding/json"
	"time"
)

// AttachmentCleanupMessage asks the worker to remove the blob that
// belonged to a deleted expense record. The blob is keyed by the record's
// identity.
type AttachmentCleanupMessage struct {
	RecordID   string    `json:"record_id"`
	Attachment string    `json:"attachment"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewAttachmentCleanupMessage(recordID, attachment string) *AttachmentCleanupMessage {
	return &AttachmentCleanupMessage{
		RecordID:   recordID,
		Attachment: attachment,
		Timestamp:  time.Now(),
	}
}

func (m *AttachmentCleanupMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AttachmentCleanupMessageFromJSON(data []byte) (*AttachmentCleanupMessage, error) {
	var msg AttachmentCleanupMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
