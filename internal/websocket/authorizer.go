package websocket

import (
	"strings"

	"jobfair-live/internal/events"
	"jobfair-live/internal/services"

	"github.com/google/uuid"
)

// BoothAccess decides whether an identity may watch a booth.
type BoothAccess interface {
	CanManageBooth(id services.Identity, boothID uuid.UUID) error
}

// ChannelAuthorizer handles authorization for websocket channel subscriptions
type ChannelAuthorizer struct {
	booths BoothAccess
}

// NewChannelAuthorizer creates an authorizer backed by booth access rules
func NewChannelAuthorizer(booths BoothAccess) *ChannelAuthorizer {
	return &ChannelAuthorizer{booths: booths}
}

// CanSubscribe allows a user's own channel and the booth channels of
// booths the user manages. Everything else is denied.
func (a *ChannelAuthorizer) CanSubscribe(id services.Identity, channel string) bool {
	if channel == events.UserChannel(id.UserID) {
		return true
	}

	var rawBooth string
	switch {
	case strings.HasPrefix(channel, events.ChannelPrefixBoothManagement):
		rawBooth = strings.TrimPrefix(channel, events.ChannelPrefixBoothManagement)
	case strings.HasPrefix(channel, events.ChannelPrefixBooth):
		rawBooth = strings.TrimPrefix(channel, events.ChannelPrefixBooth)
	default:
		return false
	}
	boothID, err := uuid.Parse(rawBooth)
	if err != nil {
		return false
	}
	return a.booths.CanManageBooth(id, boothID) == nil
}
