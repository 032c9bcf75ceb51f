package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// ExtractText converts a message content value into plain text. The first
// matching shape wins:
//
//	nil                      -> ""
//	string                   -> the string
//	{"parts": [...]}         -> string parts joined with "\n", other parts ignored
//	{"text": "..."}          -> the text field
//	anything else            -> its JSON encoding, or a type placeholder
//
// It never panics and always returns the same text for the same input.
func ExtractText(content any) (text string) {
	defer func() {
		if recover() != nil {
			text = placeholder(content)
		}
	}()

	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if parts, ok := stringParts(v["parts"]); ok {
			return strings.Join(parts, "\n")
		}
		if s, ok := v["text"].(string); ok {
			return s
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(content); err != nil {
		return stringify(content)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// stringParts returns the string fragments of a parts list. Non-string
// fragments are dropped rather than coerced.
func stringParts(v any) ([]string, bool) {
	switch parts := v.(type) {
	case []string:
		return parts, true
	case []any:
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s, ok := p.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

// stringify is the last-resort conversion for values JSON cannot encode.
// Composite and reference values are never walked, since they may be cyclic.
func stringify(v any) string {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct,
		reflect.Pointer, reflect.Interface, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return placeholder(v)
	}
	return fmt.Sprint(v)
}

func placeholder(v any) string {
	return fmt.Sprintf("[object %T]", v)
}
