package events

import (
	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/queue"

	"github.com/google/uuid"
)

// Event is a state change worth pushing to clients. Every event carries a
// full snapshot of the changed entity.
type Event interface {
	EventType() string
	AggregateType() string
	AggregateID() string
}

type QueueEntryUpdated struct {
	Entry queue.Entry `json:"entry"`
}

func (e *QueueEntryUpdated) EventType() string     { return EventTypeQueueEntryUpdated }
func (e *QueueEntryUpdated) AggregateType() string { return AggregateQueueEntry }
func (e *QueueEntryUpdated) AggregateID() string   { return e.Entry.ID.String() }

// sessionEvent is embedded by every call event.
type sessionEvent struct {
	Session call.Session `json:"session"`
}

func (e *sessionEvent) AggregateType() string { return AggregateCallSession }
func (e *sessionEvent) AggregateID() string   { return e.Session.ID.String() }

// CallInvitation tells the job seeker a recruiter opened a call for them.
type CallInvitation struct {
	sessionEvent
}

func NewCallInvitation(s call.Session) *CallInvitation {
	return &CallInvitation{sessionEvent{Session: s}}
}

func (e *CallInvitation) EventType() string { return EventTypeCallInvitation }

// InterpreterInvited carries what an interpreter needs to accept or decline.
type InterpreterInvited struct {
	sessionEvent
	InterpreterID uuid.UUID `json:"interpreter_id"`
	Category      string    `json:"category"`
	RoomName      string    `json:"room_name"`
	AccessToken   string    `json:"access_token"`
}

func NewInterpreterInvited(s call.Session, interpreterID uuid.UUID, category, token string) *InterpreterInvited {
	return &InterpreterInvited{
		sessionEvent:  sessionEvent{Session: s},
		InterpreterID: interpreterID,
		Category:      category,
		RoomName:      s.RoomName,
		AccessToken:   token,
	}
}

func (e *InterpreterInvited) EventType() string { return EventTypeInterpreterInvited }

type InvitationDeclined struct {
	sessionEvent
	InterpreterID uuid.UUID `json:"interpreter_id"`
}

func NewInvitationDeclined(s call.Session, interpreterID uuid.UUID) *InvitationDeclined {
	return &InvitationDeclined{sessionEvent{Session: s}, interpreterID}
}

func (e *InvitationDeclined) EventType() string { return EventTypeInvitationDeclined }

type ParticipantJoined struct {
	sessionEvent
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

func NewParticipantJoined(s call.Session, userID uuid.UUID, role call.RoleKind) *ParticipantJoined {
	return &ParticipantJoined{sessionEvent{Session: s}, userID, string(role)}
}

func (e *ParticipantJoined) EventType() string { return EventTypeParticipantJoined }

type ParticipantLeft struct {
	sessionEvent
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

func NewParticipantLeft(s call.Session, userID uuid.UUID, role call.RoleKind) *ParticipantLeft {
	return &ParticipantLeft{sessionEvent{Session: s}, userID, string(role)}
}

func (e *ParticipantLeft) EventType() string { return EventTypeParticipantLeft }

// CallEnded goes to everyone who was in the call when it ended.
// Interpreters lists the interpreters holding invited or joined records at
// that moment.
type CallEnded struct {
	sessionEvent
	Interpreters []uuid.UUID `json:"interpreters"`
}

func NewCallEnded(s call.Session, interpreters []uuid.UUID) *CallEnded {
	return &CallEnded{sessionEvent{Session: s}, interpreters}
}

func (e *CallEnded) EventType() string { return EventTypeCallEnded }

type MessageAdded struct {
	sessionEvent
	Message call.ChatMessage `json:"message"`
}

func NewMessageAdded(s call.Session, m call.ChatMessage) *MessageAdded {
	return &MessageAdded{sessionEvent{Session: s}, m}
}

func (e *MessageAdded) EventType() string { return EventTypeMessageAdded }
