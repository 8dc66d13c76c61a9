package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBitrate validates a free-text bitrate field and returns its value in
// kbit/s. Thousands separators are tolerated ("5,000" reads as 5000); empty,
// zero, negative, and non-numeric inputs are rejected before any backend is
// invoked.
func ParseBitrate(text string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("%w: bitrate is empty", errValidation)
	}
	value, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: bitrate %q is not a number", errValidation, text)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: bitrate must be positive, got %d", errValidation, value)
	}
	return value, nil
}
