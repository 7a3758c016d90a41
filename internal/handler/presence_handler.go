package handler

import (
	"fmt"
	"net/http"

	"jobfair-live/internal/presence"
	"jobfair-live/internal/transport/httpdto"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	registry *presence.Registry
}

func NewPresenceHandler(registry *presence.Registry) *PresenceHandler {
	return &PresenceHandler{registry: registry}
}

// LiveStats lists who is online and who is in a call. Operators see every
// booth; booth staff see their own booth only.
func (h *PresenceHandler) LiveStats(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	online := h.registry.ListOnline()
	inCall := h.registry.ListCallParticipants()

	if !id.Role.IsPrivileged() {
		if !id.Role.IsBoothStaff() || !id.BoothID.Valid {
			writeError(c, fmt.Errorf("%w: live stats are for staff", jobfair_errors.ErrUnauthorized))
			return
		}
		booth := id.BoothID.UUID
		filteredOnline := make([]presence.Record, 0, len(online))
		for _, rec := range online {
			if rec.BoothID.Valid && rec.BoothID.UUID == booth {
				filteredOnline = append(filteredOnline, rec)
			}
		}
		filteredCall := make([]presence.CallRecord, 0, len(inCall))
		for _, rec := range inCall {
			if rec.BoothID == booth {
				filteredCall = append(filteredCall, rec)
			}
		}
		online, inCall = filteredOnline, filteredCall
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.LiveStatsResponse{
		Online: nonNil(online),
		InCall: nonNil(inCall),
	}))
}
