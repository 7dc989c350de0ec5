// Package format normalizes backend chat responses into displayable text.
package format

import (
	"encoding/json"
)

// Fallback is shown when the backend payload carries no usable text.
const Fallback = "Sorry, I am having trouble processing your request. Please try again."

// objectResponse is the single-object reply shape.
type objectResponse struct {
	Response string `json:"response"`
}

// arrayItem is one element of the sequence reply shape.
type arrayItem struct {
	Output string `json:"output"`
}

// BotResponse extracts display text from a backend reply. Precedence is
// fixed: a non-empty top-level "response" field wins, then the "output"
// field of the first sequence element, then the fallback string. The order
// decides what the user sees when the reply shape is ambiguous; do not
// reorder.
func BotResponse(raw json.RawMessage) string {
	var obj objectResponse
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Response != "" {
		return obj.Response
	}

	var items []arrayItem
	if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 && items[0].Output != "" {
		return items[0].Output
	}

	return Fallback
}
