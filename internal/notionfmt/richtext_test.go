package notionfmt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRichText(t *testing.T) {
	assert.Equal(t, RichText{{"Hello world"}}, ToRichText("Hello world"))

	b, err := json.Marshal(ToRichText("Hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `[["Hi"]]`, string(b))
}

func TestFromRichText(t *testing.T) {
	var decoded []any
	require.NoError(t, json.Unmarshal([]byte(`[["Hello "],["bold",[["b"]]],[" text"]]`), &decoded))

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"decoded json drops decorations", decoded, "Hello bold text"},
		{"rich text value", RichText{{"a"}, {"b", []any{[]any{"i"}}}}, "ab"},
		{"empty runs skipped", []any{[]any{}, []any{"x"}, "junk"}, "x"},
		{"not rich text", "plain", ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromRichText(tt.input))
		})
	}
}

func TestRichTextRoundTrip(t *testing.T) {
	assert.Equal(t, "Welcome", FromRichText(ToRichText("Welcome")))
}
