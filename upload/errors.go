package upload

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/laborwatch/cluedash/consts"
)

var (
	ErrMissingFile = errors.New("missing required file")
	ErrBusy        = errors.New("a submission is already in progress")
)

// ServerError is a non-200 answer from the processing backend.
type ServerError struct {
	Status int
	Detail string
}

func (e *ServerError) Error() string {
	return e.Detail
}

// serverError takes the message from a JSON body's "detail" string, falling back to
// the generic message.
func serverError(status int, body []byte) *ServerError {
	se := &ServerError{Status: status, Detail: consts.MsgServerError}
	var data struct {
		Detail interface{} `json:"detail"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return se
	}
	if s, ok := data.Detail.(string); ok && strings.TrimSpace(s) != "" {
		se.Detail = s
	}
	return se
}

type TransportKind int

const (
	Network TransportKind = iota
	Timeout
)

func (k TransportKind) String() string {
	if k == Timeout {
		return "timeout"
	}
	return "network"
}

// TransportError means the exchange never produced a usable response.
type TransportError struct {
	Kind TransportKind
	Err  error
}

func (e *TransportError) Error() string {
	if e.Kind == Timeout {
		return consts.MsgTimeoutError
	}
	return consts.MsgNetworkError
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the user once a submission ends.
func Message(err error) string {
	if err == nil {
		return consts.MsgSuccess
	}
	var se *ServerError
	var te *TransportError
	switch {
	case errors.As(err, &se):
		return se.Error()
	case errors.As(err, &te):
		return te.Error()
	case errors.Is(err, ErrMissingFile):
		return consts.MsgMissingFile
	case errors.Is(err, ErrBusy):
		return consts.MsgBusy
	default:
		return consts.MsgServerError
	}
}
