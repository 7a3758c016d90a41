package httpdto

type CreateCallRequest struct {
	QueueEntryID string `json:"queue_entry_id" binding:"required"`
}

type InviteInterpreterRequest struct {
	InterpreterID string `json:"interpreter_id" binding:"required"`
	Category      string `json:"category"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}
