package notionfmt

import (
	"fmt"
	"strings"
)

// RichText is the protocol's run list: each run is [text, decorations?]
type RichText [][]any

// ToRichText wraps a plain string as a single undecorated run
func ToRichText(s string) RichText {
	return RichText{{s}}
}

// FromRichText concatenates the text of every run and drops decorations.
// It accepts RichText as well as the []any shape produced by encoding/json.
// Inline markup is not interpreted.
func FromRichText(v any) string {
	var runs []any
	switch t := v.(type) {
	case RichText:
		runs = make([]any, len(t))
		for i := range t {
			runs[i] = []any(t[i])
		}
	case [][]any:
		runs = make([]any, len(t))
		for i := range t {
			runs[i] = t[i]
		}
	case []any:
		runs = t
	default:
		return ""
	}

	var sb strings.Builder
	for _, run := range runs {
		seg, ok := run.([]any)
		if !ok || len(seg) == 0 {
			continue
		}
		switch text := seg[0].(type) {
		case string:
			sb.WriteString(text)
		case nil:
		default:
			sb.WriteString(fmt.Sprint(text))
		}
	}
	return sb.String()
}
