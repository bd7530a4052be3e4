package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const indentUnit = "  "

// Render turns a projected value into display text. A nil value is
// suppressed, a string is returned unquoted and anything else is
// pretty-printed JSON with sorted object keys.
func Render(v any) (string, bool) {
	return render(v, nil)
}

// palette holds the styles applied to JSON tokens. A nil palette renders plain text.
type palette struct {
	key     lipgloss.Style
	str     lipgloss.Style
	num     lipgloss.Style
	boolean lipgloss.Style
	null    lipgloss.Style
}

func render(v any, pal *palette) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	}
	var b strings.Builder
	writeValue(&b, v, "", pal)
	return b.String(), true
}

func writeValue(b *strings.Builder, v any, indent string, pal *palette) {
	switch x := v.(type) {
	case map[string]any:
		if len(x) == 0 {
			b.WriteString("{}")
			return
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		inner := indent + indentUnit
		b.WriteString("{\n")
		for i, k := range keys {
			b.WriteString(inner)
			b.WriteString(paint(pal, tokenKey, quote(k)))
			b.WriteString(": ")
			writeValue(b, x[k], inner, pal)
			if i < len(keys)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(indent)
		b.WriteByte('}')
	case []any:
		if len(x) == 0 {
			b.WriteString("[]")
			return
		}
		inner := indent + indentUnit
		b.WriteString("[\n")
		for i, elem := range x {
			b.WriteString(inner)
			writeValue(b, elem, inner, pal)
			if i < len(x)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(indent)
		b.WriteByte(']')
	case nil:
		b.WriteString(paint(pal, tokenNull, "null"))
	case string:
		b.WriteString(paint(pal, tokenString, quote(x)))
	case bool:
		b.WriteString(paint(pal, tokenBool, fmt.Sprint(x)))
	case json.Number:
		b.WriteString(paint(pal, tokenNumber, x.String()))
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			raw = []byte(quote(fmt.Sprint(x)))
		}
		b.WriteString(paint(pal, tokenNumber, string(raw)))
	}
}

type token int

const (
	tokenKey token = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
)

func paint(pal *palette, t token, s string) string {
	if pal == nil {
		return s
	}
	switch t {
	case tokenKey:
		return pal.key.Render(s)
	case tokenString:
		return pal.str.Render(s)
	case tokenNumber:
		return pal.num.Render(s)
	case tokenBool:
		return pal.boolean.Render(s)
	default:
		return pal.null.Render(s)
	}
}

// quote encodes s as a JSON string without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `"` + s + `"`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
