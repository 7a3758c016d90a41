package handler

import (
	"net/http"

	"jobfair-live/internal/domain/user"
	"jobfair-live/internal/proxy"
	"jobfair-live/internal/services"
	"jobfair-live/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type InterpreterHandler struct {
	service *services.InterpreterService
	access  *proxy.AccessControl
}

func NewInterpreterHandler(service *services.InterpreterService, access *proxy.AccessControl) *InterpreterHandler {
	return &InterpreterHandler{service: service, access: access}
}

func (h *InterpreterHandler) ListAvailable(c *gin.Context) {
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
	list, err := h.service.ListAvailable(c.Request.Context(), boothID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"interpreters": list}))
}

func (h *InterpreterHandler) SetStatus(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req httpdto.SetInterpreterStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	status := user.InterpreterStatus(req.Status)
	if err := h.service.SetStatus(c.Request.Context(), id, status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": status}))
}
