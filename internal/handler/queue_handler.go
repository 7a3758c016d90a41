package handler

import (
	"context"
	"fmt"
	"net/http"

	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/domain/user"
	"jobfair-live/internal/proxy"
	"jobfair-live/internal/services"
	"jobfair-live/internal/transport/httpdto"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserLookup reads the user directory.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

type QueueHandler struct {
	service *services.QueueService
	users   UserLookup
	access  *proxy.AccessControl
}

func NewQueueHandler(service *services.QueueService, users UserLookup, access *proxy.AccessControl) *QueueHandler {
	return &QueueHandler{service: service, users: users, access: access}
}

func (h *QueueHandler) Join(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	boothID, ok := uuidParam(c, "boothId")
	if !ok {
		return
	}
	var req httpdto.JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		badRequest(c, "invalid request")
		return
	}
	if id.Role != user.RoleJobSeeker {
		writeError(c, fmt.Errorf("%w: only job seekers join queues", jobfair_errors.ErrUnauthorized))
		return
	}

	eventID, err := h.resolveEvent(c, id.UserID, req.EventID)
	if err != nil {
		writeError(c, err)
		return
	}

	entry, err := h.service.Join(c.Request.Context(), services.JoinQueueInput{
		BoothID:             boothID,
		JobSeekerID:         id.UserID,
		EventID:             eventID,
		InterpreterCategory: req.InterpreterCategory,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(entry))
}

// resolveEvent takes the event from the request and falls back to the one
// the job seeker registered for.
func (h *QueueHandler) resolveEvent(c *gin.Context, userID uuid.UUID, raw string) (uuid.UUID, error) {
	if raw != "" {
		eventID, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: invalid event_id", jobfair_errors.ErrInvalidInput)
		}
		return eventID, nil
	}
	u, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return uuid.Nil, err
	}
	if !u.EventID.Valid {
		return uuid.Nil, fmt.Errorf("%w: event_id is required", jobfair_errors.ErrInvalidInput)
	}
	return u.EventID.UUID, nil
}

func (h *QueueHandler) ListByBooth(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	boothID, ok := uuidParam(c, "boothId")
	if !ok {
		return
	}
	if err := h.access.CanManageBooth(id, boothID); err != nil {
		writeError(c, err)
		return
	}
	entries, err := h.service.ListByBooth(c.Request.Context(), boothID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"entries": nonNil(entries)}))
}

func (h *QueueHandler) Get(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	entry, ok := h.loadEntry(c)
	if !ok {
		return
	}
	if err := h.access.CanViewEntry(id, entry); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(entry))
}

func (h *QueueHandler) Invite(c *gin.Context) {
	h.manage(c, h.service.Invite)
}

func (h *QueueHandler) Complete(c *gin.Context) {
	h.manage(c, h.service.Complete)
}

func (h *QueueHandler) Leave(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	entry, ok := h.loadEntry(c)
	if !ok {
		return
	}
	if err := h.access.CanLeaveEntry(id, entry); err != nil {
		writeError(c, err)
		return
	}
	updated, err := h.service.Leave(c.Request.Context(), entry.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(updated))
}

// manage runs a booth-staff transition on the entry in the path.
func (h *QueueHandler) manage(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (queue.Entry, error)) {
	id, ok := identity(c)
	if !ok {
		return
	}
	entry, ok := h.loadEntry(c)
	if !ok {
		return
	}
	if err := h.access.CanManageBooth(id, entry.BoothID); err != nil {
		writeError(c, err)
		return
	}
	updated, err := op(c.Request.Context(), entry.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(updated))
}

func (h *QueueHandler) loadEntry(c *gin.Context) (queue.Entry, bool) {
	entryID, ok := uuidParam(c, "id")
	if !ok {
		return queue.Entry{}, false
	}
	entry, err := h.service.Get(c.Request.Context(), entryID)
	if err != nil {
		writeError(c, err)
		return queue.Entry{}, false
	}
	return entry, true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
