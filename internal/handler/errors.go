package handler

import (
	"context"
	"errors"
	"net/http"

	"jobfair-live/internal/services"
	"jobfair-live/internal/transport/httpdto"
	jobfair_errors "jobfair-live/pkg/errors"
	"jobfair-live/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Business conflicts get their own codes so clients can tell "pick another
// interpreter" apart from "you are not part of this call".
var errorMappings = []errorMapping{
	{jobfair_errors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{jobfair_errors.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
	{jobfair_errors.ErrInvalidTransition, http.StatusConflict, "INVALID_STATE"},
	{jobfair_errors.ErrNotActive, http.StatusConflict, "CALL_NOT_ACTIVE"},
	{jobfair_errors.ErrDuplicateActiveEntry, http.StatusConflict, "DUPLICATE_ACTIVE_ENTRY"},
	{jobfair_errors.ErrAlreadyInvited, http.StatusConflict, "ALREADY_INVITED"},
	{jobfair_errors.ErrAlreadyBusy, http.StatusConflict, "ALREADY_BUSY"},
	{jobfair_errors.ErrTransportFailure, http.StatusBadGateway, "TRANSPORT_FAILURE"},
	{jobfair_errors.ErrInvalidInput, http.StatusBadRequest, "INVALID_REQUEST"},
	{jobfair_errors.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
	{jobfair_errors.ErrServiceUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
}

// HTTPStatus maps an error to its status and machine code.
func HTTPStatus(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

func writeError(c *gin.Context, err error) {
	status, code := HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.GetGlobalLogger().WithContext(c.Request.Context()).Error("unhandled error",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
		msg = "internal error"
	}
	c.JSON(status, httpdto.NewErrorResponse(msg, code))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(msg, "INVALID_REQUEST"))
}

func identity(c *gin.Context) (services.Identity, bool) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHENTICATED"))
		return services.Identity{}, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
