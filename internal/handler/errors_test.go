package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{jobfair_errors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: not in call", jobfair_errors.ErrUnauthorized), http.StatusForbidden, "UNAUTHORIZED"},
		{jobfair_errors.ErrInvalidTransition, http.StatusConflict, "INVALID_STATE"},
		{jobfair_errors.ErrNotActive, http.StatusConflict, "CALL_NOT_ACTIVE"},
		{jobfair_errors.ErrDuplicateActiveEntry, http.StatusConflict, "DUPLICATE_ACTIVE_ENTRY"},
		{jobfair_errors.ErrAlreadyInvited, http.StatusConflict, "ALREADY_INVITED"},
		{fmt.Errorf("invite: %w", jobfair_errors.ErrAlreadyBusy), http.StatusConflict, "ALREADY_BUSY"},
		{jobfair_errors.ErrTransportFailure, http.StatusBadGateway, "TRANSPORT_FAILURE"},
		{jobfair_errors.ErrInvalidInput, http.StatusBadRequest, "INVALID_REQUEST"},
		{jobfair_errors.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{fmt.Errorf("lock: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		status, code := HTTPStatus(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
