package listing

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns that are missing from a feed.
// The affected channel is treated as empty; other channels still run.
type SchemaError struct {
	Channel Channel
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Channel, strings.Join(e.Missing, ", "))
}

// CheckHeaders verifies that every required column exists in h.
func CheckHeaders(ch Channel, h *Header, required []string) error {
	var missing []string
	for _, name := range required {
		if _, ok := h.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Channel: ch, Missing: missing}
	}
	return nil
}
