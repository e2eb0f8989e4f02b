package activity

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gosuda/trackly/internal/domain"
)

// EmptyPlaceholder is shown instead of a blank cell for nil or empty values.
const EmptyPlaceholder = "(empty)"

// DiffRow is a rendered field-level before/after pair.
type DiffRow struct {
	FieldLabel string `json:"field_label"`
	OldDisplay string `json:"old_display"`
	NewDisplay string `json:"new_display"`
}

// RenderChanges renders one row per change, in order.
func RenderChanges(changes []domain.Change) []DiffRow {
	rows := make([]DiffRow, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, DiffRow{
			FieldLabel: FieldLabel(c.Field),
			OldDisplay: RenderValue(c.OldValue),
			NewDisplay: RenderValue(c.NewValue),
		})
	}
	return rows
}

// RenderValue formats a change value for display. nil, empty strings and
// empty lists become EmptyPlaceholder; lists are comma-joined.
func RenderValue(v any) string {
	s := coerce(v)
	if s == "" {
		return EmptyPlaceholder
	}
	return s
}

func coerce(v any) string {
	if v == nil {
		return ""
	}

	// Dereference first so that typed nil pointers never reach a
	// value-receiver String method.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		return coerce(rv.Elem().Interface())
	}

	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = coerce(item)
		}
		return strings.Join(parts, ", ")
	case fmt.Stringer:
		return t.String()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return ""
		}
		parts := make([]string, rv.Len())
		for i := range rv.Len() {
			parts[i] = coerce(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	case reflect.Map, reflect.Struct:
		if rv.Kind() == reflect.Map && rv.IsNil() {
			return ""
		}
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

// FieldLabel turns snake_case, kebab-case or camelCase field names into
// Title Case words: "due_date" and "dueDate" both become "Due Date".
func FieldLabel(field string) string {
	words := splitWords(field)
	if len(words) == 0 {
		return EmptyPlaceholder
	}
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}
