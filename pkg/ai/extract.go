package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSONArray is returned when model output holds no parseable JSON array.
var ErrNoJSONArray = errors.New("no JSON array found in model output")

var arraySpan = regexp.MustCompile(`(?s)\[.*\]`)

// ExtractJSONArray returns the elements of the JSON array in text. The whole
// text is tried first, then the span from the first '[' to the last ']', which
// covers arrays wrapped in prose or markdown fences.
func ExtractJSONArray(text string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &items); err == nil && items != nil {
		return items, nil
	}

	span := arraySpan.FindString(text)
	if span == "" {
		return nil, ErrNoJSONArray
	}
	if err := json.Unmarshal([]byte(span), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSONArray, err)
	}
	return items, nil
}
