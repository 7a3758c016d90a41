package events

import (
	"github.com/google/uuid"
)

// ChannelResolver determines which channels an event is published to
type ChannelResolver interface {
	ResolveChannels(event Event) []string
}

// AudienceResolver routes events to the user, booth and booth management
// channels of the parties involved.
type AudienceResolver struct{}

func NewAudienceResolver() *AudienceResolver {
	return &AudienceResolver{}
}

func (r *AudienceResolver) ResolveChannels(event Event) []string {
	var channels []string
	users := func(ids ...uuid.UUID) {
		for _, id := range ids {
			channels = append(channels, UserChannel(id))
		}
	}

	switch e := event.(type) {
	case *QueueEntryUpdated:
		users(e.Entry.JobSeekerID)
		channels = append(channels, BoothChannel(e.Entry.BoothID), BoothManagementChannel(e.Entry.BoothID))
	case *CallInvitation:
		users(e.Session.JobSeekerID)
		channels = append(channels, BoothManagementChannel(e.Session.BoothID))
	case *InterpreterInvited:
		users(e.InterpreterID)
		channels = append(channels, BoothManagementChannel(e.Session.BoothID))
	case *InvitationDeclined:
		users(e.Session.RecruiterID)
		channels = append(channels, BoothManagementChannel(e.Session.BoothID))
	case *ParticipantJoined:
		users(e.Session.ParticipantIDs()...)
		channels = append(channels, BoothManagementChannel(e.Session.BoothID))
	case *ParticipantLeft:
		users(e.Session.ParticipantIDs()...)
		channels = append(channels, BoothManagementChannel(e.Session.BoothID))
	case *CallEnded:
		users(e.Session.RecruiterID, e.Session.JobSeekerID)
		users(e.Interpreters...)
		channels = append(channels, BoothChannel(e.Session.BoothID), BoothManagementChannel(e.Session.BoothID))
	case *MessageAdded:
		users(e.Session.ParticipantIDs()...)
	}

	return dedupe(channels)
}

func dedupe(channels []string) []string {
	seen := make(map[string]struct{}, len(channels))
	out := channels[:0]
	for _, ch := range channels {
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}
