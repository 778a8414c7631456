package apiclient

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/assetdesk/console/internal/core/domain"
)

// messageKeys are tried in order for a human-readable message.
var messageKeys = []string{"message", "error", "detail"}

// apiError classifies a non-2xx response and extracts its message and field
// errors. Field errors follow the {"field": ["msg", ...]} convention, either
// at the top level or nested under "detail".
func apiError(status int, body []byte) *domain.APIError {
	e := &domain.APIError{Kind: domain.KindForStatus(status), Status: status}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return e
	}

	for _, key := range messageKeys {
		var msg string
		if raw, ok := payload[key]; ok && json.Unmarshal(raw, &msg) == nil && msg != "" {
			e.Message = msg
			break
		}
	}

	fields := make(map[string][]string)
	collectFields(payload, fields)
	if raw, ok := payload["detail"]; ok {
		var nested map[string]json.RawMessage
		if json.Unmarshal(raw, &nested) == nil {
			collectFields(nested, fields)
		}
	}

	if len(fields) > 0 {
		e.Fields = fields
		if e.Message == "" {
			first := slices.Sorted(maps.Keys(fields))[0]
			e.Message = fields[first][0]
		}
	}
	return e
}

func collectFields(m map[string]json.RawMessage, into map[string][]string) {
	for key, raw := range m {
		var msgs []string
		if json.Unmarshal(raw, &msgs) == nil && len(msgs) > 0 {
			into[key] = msgs
		}
	}
}
