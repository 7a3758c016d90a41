package user

// InterpreterStatus is the availability an interpreter reports for
// themselves, independent of connection presence.
type InterpreterStatus string

const (
	InterpreterOnline InterpreterStatus = "online"
	InterpreterAway   InterpreterStatus = "away"
	InterpreterBusy   InterpreterStatus = "busy"
)

func (s InterpreterStatus) Valid() bool {
	return s == InterpreterOnline || s == InterpreterAway || s == InterpreterBusy
}
