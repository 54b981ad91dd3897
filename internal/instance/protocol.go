package instance

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Methods understood by the server.
const (
	MethodOpen    = "open"
	MethodTheme   = "theme"
	MethodWindows = "windows"
	MethodPing    = "ping"
)

// Open modes.
const (
	// ModeTab opens paths as tabs of the shared window.
	ModeTab = "tab"
	// ModeWindow opens each path in a window of its own.
	ModeWindow = "window"
)

// Error codes, following JSON-RPC.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32000
)

var (
	// ErrNotRunning indicates no instance is listening on the socket.
	ErrNotRunning = errors.New("no running instance")

	// ErrAlreadyRunning indicates another instance owns the socket.
	ErrAlreadyRunning = errors.New("an instance is already running")

	// ErrClosed is returned by a closed client or server.
	ErrClosed = errors.New("connection closed")
)

// RemoteError is an error reported by the running instance.
type RemoteError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Code, e.Message)
}

func encodeRequest(id int64, method string, params map[string]any) ([]byte, error) {
	msg, err := sjson.SetBytes([]byte(`{}`), "id", id)
	if err != nil {
		return nil, err
	}
	if msg, err = sjson.SetBytes(msg, "method", method); err != nil {
		return nil, err
	}
	for key, value := range params {
		if msg, err = sjson.SetBytes(msg, "params."+key, value); err != nil {
			return nil, fmt.Errorf("encoding param %s: %w", key, err)
		}
	}
	return msg, nil
}

// encodeResult builds a success response. result is marshaled with
// encoding/json so struct tags apply.
func encodeResult(id gjson.Result, result any) []byte {
	msg := encodeID(id)
	raw, err := json.Marshal(result)
	if err != nil {
		return encodeError(id, CodeInternal, err.Error())
	}
	msg, _ = sjson.SetRawBytes(msg, "result", raw)
	return msg
}

func encodeError(id gjson.Result, code int, message string) []byte {
	msg := encodeID(id)
	msg, _ = sjson.SetBytes(msg, "error.code", code)
	msg, _ = sjson.SetBytes(msg, "error.message", message)
	return msg
}

// encodeID copies the request id verbatim, or null when it is missing.
func encodeID(id gjson.Result) []byte {
	raw := id.Raw
	if !id.Exists() {
		raw = "null"
	}
	msg, _ := sjson.SetRawBytes([]byte(`{}`), "id", []byte(raw))
	return msg
}

// decodeResponse returns the result of a response, or its error.
func decodeResponse(msg []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(msg) {
		return gjson.Result{}, fmt.Errorf("invalid response: %q", msg)
	}
	if e := gjson.GetBytes(msg, "error"); e.Exists() {
		return gjson.Result{}, &RemoteError{
			Code:    int(e.Get("code").Int()),
			Message: e.Get("message").String(),
		}
	}
	return gjson.GetBytes(msg, "result"), nil
}

// stringArray reads a JSON array of strings. A missing value is empty.
func stringArray(v gjson.Result) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("expected an array, got %s", v.Type)
	}
	var out []string
	var bad error
	v.ForEach(func(_, item gjson.Result) bool {
		if item.Type != gjson.String {
			bad = fmt.Errorf("expected strings, got %s", item.Type)
			return false
		}
		out = append(out, item.String())
		return true
	})
	return out, bad
}
