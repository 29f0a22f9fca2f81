package policy

import (
	"relay-chat/internal/domain/user"

	"github.com/google/uuid"
)

// Action enumerates the operations the policy rules on.
type Action int

const (
	ActionCreateRoom Action = iota
	ActionSendMessage
	ActionEditMessage
	ActionDeleteMessage
)

// Target carries the facts about the room/message an action is aimed at.
// Callers load these from storage; the policy itself never touches state.
type Target struct {
	RoomOwnerID     uuid.UUID
	ActorIsMember   bool
	MessageAuthorID uuid.UUID
}

// Can decides whether actor may perform action on target.
//
// Rules: any authenticated user may create rooms; members may send
// messages; only the author may edit a message; the author or the room
// owner (moderation override) may delete one.
func Can(actor user.User, action Action, target Target) bool {
	switch action {
	case ActionCreateRoom:
		return actor.ID != uuid.Nil
	case ActionSendMessage:
		return target.ActorIsMember
	case ActionEditMessage:
		return actor.ID == target.MessageAuthorID
	case ActionDeleteMessage:
		return actor.ID == target.MessageAuthorID || actor.ID == target.RoomOwnerID
	default:
		return false
	}
}
