package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// envelope is the {success, data, message} wrapper every endpoint returns.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// keys tolerated next to "data" when a payload is wrapped a second time.
var envelopeKeys = map[string]struct{}{
	"data":       {},
	"success":    {},
	"message":    {},
	"total":      {},
	"count":      {},
	"page":       {},
	"limit":      {},
	"pagination": {},
}

func decodeResponse(method, path string, status int, raw []byte, out any) error {
	raw = bytes.TrimSpace(raw)
	failed := status >= http.StatusBadRequest

	if len(raw) == 0 {
		if failed {
			return &APIError{Method: method, Path: path, Status: status, Message: http.StatusText(status)}
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || raw[0] != '{' {
		if failed {
			return &APIError{Method: method, Path: path, Status: status, Message: fallbackMessage(status, raw)}
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("backend: decode %s %s: %w", method, path, err)
		}
		return nil
	}

	if failed || (env.Success != nil && !*env.Success) {
		msg := env.Message
		if msg == "" {
			msg = fallbackMessage(status, nil)
		}
		return &APIError{Method: method, Path: path, Status: status, Message: msg}
	}
	if out == nil {
		return nil
	}

	payload := env.Data
	if env.Success == nil && len(env.Data) == 0 {
		// Bare object without an envelope.
		payload = raw
	}
	payload = unwrapData(payload)
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("backend: decode %s %s: %w", method, path, err)
	}
	return nil
}

// unwrapData strips a second {data: ...} layer some endpoints add.
func unwrapData(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return raw
	}
	inner, ok := probe["data"]
	if !ok {
		return raw
	}
	for key := range probe {
		if _, known := envelopeKeys[key]; !known {
			return raw
		}
	}
	return inner
}

func fallbackMessage(status int, raw []byte) string {
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request failed"
}
