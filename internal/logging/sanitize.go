package logging

const redacted = "[REDACTED]"

// sensitiveKeys are stripped from log data before storage or emission.
var sensitiveKeys = map[string]struct{}{
	"password": {},
	"token":    {},
	"secret":   {},
}

// Sanitize returns a deep copy of data with sensitive fields replaced by a
// redaction marker at any nesting level. A nil input stays nil.
func Sanitize(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, sensitive := sensitiveKeys[k]; sensitive {
			out[k] = redacted
			continue
		}
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Sanitize(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = sanitizeValue(e)
		}
		return out
	default:
		return v
	}
}
