package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Stringify renders a decoded JSON value as text. Strings pass through
// unchanged and nil stays nil. Payloads should be decoded with UseNumber so
// numbers keep their original digits.
func Stringify(v any) *string {
	var s string
	switch value := v.(type) {
	case nil:
		return nil
	case string:
		s = value
	case json.Number:
		s = value.String()
	case bool:
		s = strconv.FormatBool(value)
	case float64:
		s = strconv.FormatFloat(value, 'f', -1, 64)
	case map[string]any, []any:
		data, err := json.Marshal(value)
		if err != nil {
			s = fmt.Sprint(value)
		} else {
			s = string(data)
		}
	default:
		s = fmt.Sprint(value)
	}
	return &s
}

// Truthy reports whether a decoded JSON value counts as present: not nil,
// false, zero, or an empty string, array or object.
func Truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		return value != ""
	case bool:
		return value
	case json.Number:
		f, err := value.Float64()
		return err != nil || f != 0
	case float64:
		return value != 0
	case map[string]any:
		return len(value) > 0
	case []any:
		return len(value) > 0
	default:
		return true
	}
}

// FirstOf returns the first truthy value among keys, or the value of the last
// key when none is truthy.
func FirstOf(payload map[string]any, keys ...string) any {
	var last any
	for _, key := range keys {
		last = payload[key]
		if Truthy(last) {
			return last
		}
	}
	return last
}

// IntValue converts a decoded JSON number or digit string to *int.
func IntValue(v any) *int {
	var n int64
	var err error
	switch value := v.(type) {
	case json.Number:
		n, err = value.Int64()
	case float64:
		n = int64(value)
		if float64(n) != value {
			return nil
		}
	case string:
		n, err = strconv.ParseInt(value, 10, 64)
	case bool:
		if value {
			n = 1
		}
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	out := int(n)
	return &out
}

// StringPtr returns nil for "" and a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
