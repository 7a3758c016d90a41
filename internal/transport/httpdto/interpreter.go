package httpdto

import "jobfair-live/internal/presence"

type SetInterpreterStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type LiveStatsResponse struct {
	Online []presence.Record     `json:"online"`
	InCall []presence.CallRecord `json:"in_call"`
}
