package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeGoalStatusChanged = "goal.status_changed"
	EventTypeGoalCompleted     = "goal.completed"
	EventTypeGoalLimitExceeded = "goal.limit_exceeded"
)

// Trigger values tell apart automatic transitions from user actions.
const (
	TriggerAutomatic = "automatic"
	TriggerManual    = "manual"
)

type GoalStatusChangedEvent struct {
	BaseEvent
	GoalID  string `json:"goal_id"`
	UserID  string `json:"user_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Trigger string `json:"trigger"`
}

func NewGoalStatusChangedEvent(eventType, goalID, userID, from, to, trigger string, at time.Time) *GoalStatusChangedEvent {
	return &GoalStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      eventType,
			Timestamp: at,
			Data: map[string]interface{}{
				"goal_id": goalID,
				"user_id": userID,
				"from":    from,
				"to":      to,
				"trigger": trigger,
			},
		},
		GoalID:  goalID,
		UserID:  userID,
		From:    from,
		To:      to,
		Trigger: trigger,
	}
}
