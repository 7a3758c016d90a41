package handler

import (
	"context"
	"net/http"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/proxy"
	"jobfair-live/internal/services"
	"jobfair-live/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CallHandler struct {
	service *services.CallService
	queue   *services.QueueService
	access  *proxy.AccessControl
}

func NewCallHandler(service *services.CallService, queue *services.QueueService, access *proxy.AccessControl) *CallHandler {
	return &CallHandler{service: service, queue: queue, access: access}
}

func (h *CallHandler) Create(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req httpdto.CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	entryID, err := uuid.Parse(req.QueueEntryID)
	if err != nil {
		badRequest(c, "invalid queue_entry_id")
		return
	}
	access, err := h.service.Create(c.Request.Context(), entryID, id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(access))
}

func (h *CallHandler) Active(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	sessions, err := h.service.ActiveForUser(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"calls": nonNil(sessions)}))
}

func (h *CallHandler) Get(c *gin.Context) {
	session, ok := h.viewable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(session))
}

func (h *CallHandler) ListByQueueEntry(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	entryID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.queue.Get(c.Request.Context(), entryID)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.access.CanViewEntry(id, entry); err != nil {
		writeError(c, err)
		return
	}
	sessions, err := h.service.ListByQueueEntry(c.Request.Context(), entryID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"calls": nonNil(sessions)}))
}

func (h *CallHandler) Join(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	callID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	access, err := h.service.Join(c.Request.Context(), callID, id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(access))
}

func (h *CallHandler) InviteInterpreter(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	callID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req httpdto.InviteInterpreterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	interpreterID, err := uuid.Parse(req.InterpreterID)
	if err != nil {
		badRequest(c, "invalid interpreter_id")
		return
	}
	session, err := h.service.InviteInterpreter(c.Request.Context(), services.InviteInterpreterInput{
		CallID:        callID,
		RequesterID:   id.UserID,
		InterpreterID: interpreterID,
		Category:      req.Category,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(session))
}

func (h *CallHandler) Decline(c *gin.Context) {
	h.selfAction(c, h.service.Decline)
}

func (h *CallHandler) Leave(c *gin.Context) {
	h.selfAction(c, h.service.Leave)
}

func (h *CallHandler) End(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	callID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	session, err := h.service.End(c.Request.Context(), callID, id.UserID, id.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(session))
}

func (h *CallHandler) AddMessage(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	callID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	msg, err := h.service.AddMessage(c.Request.Context(), callID, id.UserID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(msg))
}

func (h *CallHandler) Roster(c *gin.Context) {
	session, ok := h.viewable(c)
	if !ok {
		return
	}
	roster, err := h.service.Roster(c.Request.Context(), session.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"participants": roster}))
}

// selfAction runs an operation the caller performs on their own behalf.
func (h *CallHandler) selfAction(c *gin.Context, op func(ctx context.Context, callID, userID uuid.UUID) (call.Session, error)) {
	id, ok := identity(c)
	if !ok {
		return
	}
	callID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	session, err := op(c.Request.Context(), callID, id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(session))
}

func (h *CallHandler) viewable(c *gin.Context) (call.Session, bool) {
	id, ok := identity(c)
	if !ok {
		return call.Session{}, false
	}
	callID, ok := uuidParam(c, "id")
	if !ok {
		return call.Session{}, false
	}
	session, err := h.service.Get(c.Request.Context(), callID)
	if err != nil {
		writeError(c, err)
		return call.Session{}, false
	}
	if err := h.access.CanViewCall(id, session); err != nil {
		writeError(c, err)
		return call.Session{}, false
	}
	return session, true
}
