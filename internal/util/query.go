package util

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Params holds query parameters keyed by name. Supported values are string,
// []string (joined with a single space), bool, *bool, signed integers and
// fmt.Stringer. Nil values and nil pointers are dropped.
type Params map[string]any

// BuildQuery serializes params into a URL-encoded query string.
// Keys are sorted, so the output is deterministic for identical input.
func BuildQuery(params Params) string {
	values := url.Values{}
	for key, value := range params {
		s, ok := formatParam(value)
		if !ok {
			continue
		}
		values.Set(key, s)
	}
	return values.Encode()
}

// BuildURL appends the encoded params to baseURL. When no parameter is
// defined the base URL is returned unchanged, without a trailing "?".
func BuildURL(baseURL string, params Params) string {
	query := BuildQuery(params)
	if query == "" {
		return baseURL
	}
	if strings.Contains(baseURL, "?") {
		return baseURL + "&" + query
	}
	return baseURL + "?" + query
}

func formatParam(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []string:
		return strings.Join(v, " "), true
	case bool:
		return strconv.FormatBool(v), true
	case *bool:
		if v == nil {
			return "", false
		}
		return strconv.FormatBool(*v), true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
