package remote

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// unwrap returns the data of an enveloped body, or body itself when it is
// not an envelope. An object counts as an envelope when it has a success
// flag, or a data field next to a message.
func unwrap(body []byte) (env envelope, data []byte, wrapped bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return envelope{}, trimmed, false
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return envelope{}, trimmed, false
	}
	if env.Success == nil && !(env.Data != nil && env.Message != "") {
		return env, trimmed, false
	}
	return env, env.Data, true
}

func decodeResponse(method, path string, status int, body []byte, out any) error {
	env, data, wrapped := unwrap(body)

	if status < 200 || status > 299 {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &Error{Method: method, Path: path, StatusCode: status, Message: msg}
	}

	if wrapped && env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "backend reported failure"
		}
		return &Error{Method: method, Path: path, StatusCode: status, Message: msg}
	}

	if out == nil || len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Method: method, Path: path, StatusCode: status, Message: "decode response body", Err: err}
	}
	return nil
}
