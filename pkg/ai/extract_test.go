package ai

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSONArrayFromPlainArray(t *testing.T) {
	items, err := ExtractJSONArray(`[{"text":"2+2?","options":["3","4"],"correctOption":1}]`)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestExtractJSONArrayFromProse(t *testing.T) {
	output := "Sure! Here are your questions:\n```json\n" +
		`[{"text":"Capital of France?","options":["Paris","Rome"],"correctOption":0},` +
		`{"text":"Largest planet?","options":["Mars","Jupiter"],"correctOption":1}]` +
		"\n```\nLet me know if you need more."

	items, err := ExtractJSONArray(output)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var first struct {
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectOption int      `json:"correctOption"`
	}
	require.NoError(t, json.Unmarshal(items[0], &first))
	require.Equal(t, "Capital of France?", first.Text)
	require.Equal(t, []string{"Paris", "Rome"}, first.Options)
}

func TestExtractJSONArrayWithoutArray(t *testing.T) {
	_, err := ExtractJSONArray("I cannot help with that request.")
	require.True(t, errors.Is(err, ErrNoJSONArray))
}

func TestExtractJSONArrayWithBrokenArray(t *testing.T) {
	_, err := ExtractJSONArray(`Here you go: [{"text": "unterminated"]`)
	require.True(t, errors.Is(err, ErrNoJSONArray))
}

func TestExtractJSONArrayRejectsNull(t *testing.T) {
	_, err := ExtractJSONArray("null")
	require.True(t, errors.Is(err, ErrNoJSONArray))
}
