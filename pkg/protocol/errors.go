// ABOUTME: Error taxonomy for the protocol client
// ABOUTME: Connection, server and unknown errors with interpolated message templates
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"syscall"
)

// Kind groups error codes
type Kind int

const (
	KindUnknown Kind = iota
	KindConnection
	KindServer
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Code identifies a specific failure
type Code string

const (
	CodeSocketClosed        Code = "socket_closed"
	CodeSocketClosing       Code = "socket_closing"
	CodeSocketConnecting    Code = "socket_connecting"
	CodeCanceled            Code = "canceled"
	CodeUnexpectedResponse  Code = "unexpected_response"
	CodeServerResponseError Code = "server_response_error"
	CodeUnknown             Code = "unknown"
)

var templates = map[Code]string{
	CodeSocketClosed:        "socket closed",
	CodeSocketClosing:       "socket is closing",
	CodeSocketConnecting:    "socket is still connecting",
	CodeCanceled:            "connection canceled",
	CodeUnexpectedResponse:  "unexpected response: {detail}",
	CodeServerResponseError: "server error {code}: {message}",
	CodeUnknown:             "unknown error",
}

func kindOf(code Code) Kind {
	switch code {
	case CodeSocketClosed, CodeSocketClosing, CodeSocketConnecting, CodeCanceled:
		return KindConnection
	case CodeUnexpectedResponse, CodeServerResponseError:
		return KindServer
	default:
		return KindUnknown
	}
}

// Sentinels for errors.Is; matching compares codes only
var (
	ErrSocketClosed        = &Error{Kind: KindConnection, Code: CodeSocketClosed, Template: templates[CodeSocketClosed]}
	ErrSocketClosing       = &Error{Kind: KindConnection, Code: CodeSocketClosing, Template: templates[CodeSocketClosing]}
	ErrSocketConnecting    = &Error{Kind: KindConnection, Code: CodeSocketConnecting, Template: templates[CodeSocketConnecting]}
	ErrCanceled            = &Error{Kind: KindConnection, Code: CodeCanceled, Template: templates[CodeCanceled]}
	ErrUnexpectedResponse  = &Error{Kind: KindServer, Code: CodeUnexpectedResponse, Template: templates[CodeUnexpectedResponse]}
	ErrServerResponseError = &Error{Kind: KindServer, Code: CodeServerResponseError, Template: templates[CodeServerResponseError]}
	ErrUnknown             = &Error{Kind: KindUnknown, Code: CodeUnknown, Template: templates[CodeUnknown]}

	// ErrMaxRetries is returned by Connect when MaxRetries is exhausted
	ErrMaxRetries = errors.New("maximum connection attempts exceeded")

	// errConnClosing is returned by a Conn whose close handshake has started
	errConnClosing = errors.New("connection is closing")
)

// Error is a classified protocol failure. Template placeholders of the form
// {name} are filled from Args when the message is rendered.
type Error struct {
	Kind     Kind
	Code     Code
	Template string
	Args     map[string]any
	// Data carries the raw server error payload for CodeServerResponseError
	Data any
	Err  error
}

func newError(code Code, args map[string]any, err error) *Error {
	return &Error{
		Kind:     kindOf(code),
		Code:     code,
		Template: templates[code],
		Args:     args,
		Err:      err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg, err := interpolate(e.Template, e.Args)
	if err != nil {
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Template
	}
	if e.Err != nil && e.Code != CodeServerResponseError && e.Code != CodeUnexpectedResponse {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Server decodes Data into a ServerError
func (e *Error) Server() (ServerError, bool) {
	var se ServerError
	if e.Code != CodeServerResponseError || e.Data == nil {
		return se, false
	}
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return se, false
	}
	if err := json.Unmarshal(raw, &se); err != nil {
		return se, false
	}
	return se, true
}

var placeholder = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// interpolate fills {name} placeholders; a missing argument is an error
func interpolate(template string, args map[string]any) (string, error) {
	var missing string
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := args[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return m
		}
		return fmt.Sprint(v)
	})
	if missing != "" {
		return "", fmt.Errorf("missing template argument %q", missing)
	}
	return out, nil
}

// newServerError classifies an error payload. The raw JSON doubles as the
// fallback message when the payload lacks code or message.
func newServerError(raw json.RawMessage) *Error {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		payload = string(raw)
	}

	args := map[string]any{}
	if m, ok := payload.(map[string]any); ok {
		if code, ok := m["code"]; ok {
			args["code"] = code
		}
		if msg, ok := m["message"]; ok {
			args["message"] = msg
		}
	}

	e := newError(CodeServerResponseError, args, errors.New(string(raw)))
	e.Data = payload
	return e
}

func errorsIsClosing(err error) bool {
	return errors.Is(err, errConnClosing)
}

// Retryable reports whether err is a connection failure worth retrying:
// closed sockets and refused connections
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSocketClosed) || errors.Is(err, ErrSocketClosing) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}
