package testkit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response code and prints the body on mismatch.
func AssertStatusCode(t *testing.T, s Step, got int, body []byte) {
	t.Helper()
	assert.Equal(t, s.ExpectedCode, got, "[%s] HTTP status code mismatch\nbody: %s", s.Name, body)
}

// AssertJSONSubset checks that every key in expected appears in actual with
// the same value. Arrays must match in length and element by element.
func AssertJSONSubset(t *testing.T, s Step, expected, actual []byte) {
	t.Helper()

	var expVal, actVal any
	require.NoError(t, json.Unmarshal(expected, &expVal), "[%s] expectedBody is not valid JSON", s.Name)
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "[%s] response is not JSON\nbody: %s", s.Name, actual) {
		return
	}

	for _, d := range diffSubset("", expVal, actVal) {
		t.Errorf("[%s] %s", s.Name, d)
	}
}

func diffSubset(path string, expected, actual any) []string {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected object, got %T", keyPath(path), actual)}
		}
		var diffs []string
		for k, ev := range exp {
			av, exists := act[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("%s: missing", keyPath(path+"."+k)))
				continue
			}
			diffs = append(diffs, diffSubset(path+"."+k, ev, av)...)
		}
		return diffs
	case []any:
		act, ok := actual.([]any)
		if !ok {
			return []string{fmt.Sprintf("%s: expected array, got %T", keyPath(path), actual)}
		}
		if len(exp) != len(act) {
			return []string{fmt.Sprintf("%s: array length expected=%d actual=%d", keyPath(path), len(exp), len(act))}
		}
		var diffs []string
		for i := range exp {
			diffs = append(diffs, diffSubset(fmt.Sprintf("%s.%d", path, i), exp[i], act[i])...)
		}
		return diffs
	default:
		if !assert.ObjectsAreEqual(expected, actual) {
			return []string{fmt.Sprintf("%s:\n    - %v\n    + %v", keyPath(path), expected, actual)}
		}
		return nil
	}
}

// lookup walks a dotted path through decoded JSON and renders the value
// found as a string.
func lookup(v any, path string) (string, bool) {
	for _, part := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return "", false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return "", false
			}
			v = node[i]
		default:
			return "", false
		}
	}

	switch val := v.(type) {
	case string:
		return val, true
	case nil:
		return "", false
	default:
		b, _ := json.Marshal(val)
		return string(b), true
	}
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
