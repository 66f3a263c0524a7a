package nodeserver

import (
	"encoding/json"
)

const (
	MessageExecuting      = "executing"
	MessageExecuted       = "executed"
	MessageExecutionError = "execution_error"
)

// WSMessage is one event of the execution stream
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (sm *WSMessage) UnmarshalJSON(b []byte) error {
	// decode into an equivalent anonymous type to avoid infinite recursion
	var temp struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}

	sm.Type = temp.Type

	switch sm.Type {
	case MessageExecuting:
		sm.Data = &WSMessageDataExecuting{}
	case MessageExecuted:
		sm.Data = &WSMessageDataExecuted{}
	case MessageExecutionError:
		sm.Data = &WSMessageExecutionError{}
	default:
		sm.Data = nil
	}

	if sm.Data != nil && len(temp.Data) > 0 {
		if err := json.Unmarshal(temp.Data, sm.Data); err != nil {
			return err
		}
	}
	return nil
}

type WSMessageDataExecuting struct {
	Node        string `json:"node"`
	ExecutionID string `json:"execution_id"`
}

/*
{"type": "executing", "data": {"node": "RTXRemixGetLayers", "execution_id": "ed986d60-2a27-4d28-8871-2fdb36582902"}}
*/

type WSMessageDataExecuted struct {
	Node        string            `json:"node"`
	ExecutionID string            `json:"execution_id"`
	Output      []json.RawMessage `json:"output"`
}

/*
{"type": "executed", "data": {"node": "RTXRemixGetEditTarget", "execution_id": "ed98...", "output": [{"address": "127.0.0.1", "port": 8011}, "C:/project/mod.usda"]}}
*/

type WSMessageExecutionError struct {
	Node             string `json:"node"`
	ExecutionID      string `json:"execution_id"`
	ExceptionMessage string `json:"exception_message"`
	ExceptionType    string `json:"exception_type"`
}

/*
{"type": "execution_error", "data": {"node": "RTXRemixGetLayers", "execution_id": "ed98...", "exception_message": "empty result: no layers found", "exception_type": "EmptyResultError"}}
*/
