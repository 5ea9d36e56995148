package api

import (
	"encoding/json"
	"fmt"

	"github.com/waylis/waycli/internal/chat"
)

// ReviveDates walks a decoded JSON value and converts every string
// matching the strict ISO-8601 UTC wire format into a time.Time. The
// pass is applied to all strings, not only known date fields, so
// callers must not rely on untouched formatting for values that happen
// to match the pattern.
func ReviveDates(v any) any {
	switch val := v.(type) {
	case string:
		if ts, ok := chat.ParseTimestamp(val); ok {
			return ts
		}
		return val
	case map[string]any:
		for k, item := range val {
			val[k] = ReviveDates(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = ReviveDates(item)
		}
		return val
	default:
		return v
	}
}

// decodeBody unmarshals a response payload. Generic targets get the
// recursive date-revival pass; typed targets enforce the same timestamp
// format through their own unmarshalers and time.Time fields.
func decodeBody(data []byte, out any) error {
	switch target := out.(type) {
	case *any:
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		*target = ReviveDates(generic)
		return nil
	case *map[string]any:
		var generic map[string]any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		*target = ReviveDates(generic).(map[string]any)
		return nil
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}
