package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Snapshot is the set of gateway types the mapper can materialize.
type Snapshot interface {
	RequestStatus | DeliveryStatus | VerificationStatus
}

// DecodeRequestStatus decodes a JSON object into a RequestStatus. Unknown keys
// are ignored and missing keys keep their zero value.
func DecodeRequestStatus(data []byte) (RequestStatus, error) {
	return decodeObject[RequestStatus](data)
}

// FromJSON builds a snapshot from JSON text. Text that does not parse as a JSON
// object yields the zero value.
func FromJSON[T Snapshot](text string) T {
	out, err := decodeObject[T]([]byte(text))
	if err != nil {
		var zero T
		return zero
	}
	return out
}

// FromMap builds a snapshot from an already decoded key/value mapping, such as
// a generic JSON document. Nested objects become typed sub-objects.
func FromMap[T Snapshot](values map[string]any) (T, error) {
	var out T
	if len(values) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return out, fmt.Errorf("core: encode mapping: %w", err)
	}
	return decodeObject[T](raw)
}

func decodeObject[T Snapshot](data []byte) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return out, fmt.Errorf("core: json object expected")
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, fmt.Errorf("core: decode %T: %w", out, err)
	}
	return out, nil
}

func encodeCompact(value any) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
