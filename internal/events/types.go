package events

import (
	"github.com/google/uuid"
)

// Event types follow domain.action
const (
	EventTypeQueueEntryUpdated  = "queue.entry_updated"
	EventTypeCallInvitation     = "call.invitation"
	EventTypeInterpreterInvited = "call.interpreter_invited"
	EventTypeInvitationDeclined = "call.invitation_declined"
	EventTypeParticipantJoined  = "call.participant_joined"
	EventTypeParticipantLeft    = "call.participant_left"
	EventTypeCallEnded          = "call.ended"
	EventTypeMessageAdded       = "call.message_added"
)

// Aggregate type constants
const (
	AggregateQueueEntry  = "queue_entry"
	AggregateCallSession = "call_session"
)

// Channel prefixes
const (
	ChannelPrefixUser            = "user:"
	ChannelPrefixBooth           = "booth:"
	ChannelPrefixBoothManagement = "booth_management:"
)

// ChannelPatterns are the patterns the websocket bridge subscribes to.
var ChannelPatterns = []string{
	ChannelPrefixUser + "*",
	ChannelPrefixBooth + "*",
	ChannelPrefixBoothManagement + "*",
}

func UserChannel(id uuid.UUID) string {
	return ChannelPrefixUser + id.String()
}

func BoothChannel(id uuid.UUID) string {
	return ChannelPrefixBooth + id.String()
}

func BoothManagementChannel(id uuid.UUID) string {
	return ChannelPrefixBoothManagement + id.String()
}
