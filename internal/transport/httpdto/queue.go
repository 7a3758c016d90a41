package httpdto

type JoinQueueRequest struct {
	EventID             string `json:"event_id"`
	InterpreterCategory string `json:"interpreter_category"`
}
