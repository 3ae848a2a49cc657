package store

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Sender tags who produced a chat message.
type Sender string

const (
	SenderUser       Sender = "user"
	SenderBot        Sender = "bot"
	SenderDialogflow Sender = "dialogflow"
)

func (s Sender) Valid() bool {
	switch s {
	case SenderUser, SenderBot, SenderDialogflow:
		return true
	}
	return false
}

// Message is a single persisted chat message. Messages are immutable once
// written and are only removed by the bulk delete-by-user operation.
type Message struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID    string        `bson:"user_id" json:"user_id"`
	Message   string        `bson:"message" json:"message"`
	Sender    Sender        `bson:"sender" json:"sender"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
}

// NewMessage builds a message with a server-assigned UTC timestamp. The
// timestamp is never taken from the client; history ordering depends on it.
func NewMessage(userID, text string, sender Sender) (Message, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Message{}, fmt.Errorf("user_id cannot be empty")
	}
	if len(userID) > 50 {
		return Message{}, fmt.Errorf("user_id too long")
	}
	if strings.TrimSpace(text) == "" {
		return Message{}, fmt.Errorf("message cannot be empty")
	}
	if !sender.Valid() {
		return Message{}, fmt.Errorf("invalid sender %q", sender)
	}
	return Message{
		UserID:    userID,
		Message:   text,
		Sender:    sender,
		Timestamp: time.Now().UTC(),
	}, nil
}
