package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAccountCreated = "account.created"
	EventTypeAccountUpdated = "account.updated"
	EventTypeAccountDeleted = "account.deleted"
)

// AccountEvent is published after an account mutation and its audit entry have been committed.
type AccountEvent struct {
	BaseEvent
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	Action    string `json:"action"`
}

func NewAccountEvent(eventType string, accountID int64, username, action string) *AccountEvent {
	return &AccountEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"account_id": accountID,
				"username":   username,
				"action":     action,
			},
		},
		AccountID: accountID,
		Username:  username,
		Action:    action,
	}
}
