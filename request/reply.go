package request

import "github.com/timour/amqprpc/core"

// Reply mirrors the {"Ok": ...} / {"Err": {...}} wire shape. Exactly one of
// Ok or Err is populated.
type Reply struct {
	Ok  any         `json:"Ok,omitempty"`
	Err *core.Error `json:"Err,omitempty"`
}

// OkReply wraps a successful action result for publication.
func OkReply(value any) Reply {
	return Reply{Ok: value}
}

// ErrReply wraps a failure for publication.
func ErrReply(err *core.Error) Reply {
	return Reply{Err: err}
}
