package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Trace for context; frame messages are left out of Error
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nLifecycle:\n")
		for _, event := range lifecycle(e.Trace) {
			fmt.Fprintf(&buf, "  %s\n", event)
		}
	}
	return buf.String()
}

// assertTraceContains checks that some message of the kind matches the
// expected fields (subset match, dotted paths reach nested objects).
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Kind == a.Kind && matchFields(event.Fields, a.Fields) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s with fields %v", a.Kind, a.Fields),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the kinds appear as a subsequence of the
// trace. Intervening messages are allowed and kinds may repeat.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Kinds) && event.Kind == a.Kinds[next] {
			next++
		}
	}
	if next == len(a.Kinds) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("kinds in order: %v", a.Kinds),
		Actual:   fmt.Sprintf("matched %d of %d, missing %s", next, len(a.Kinds), a.Kinds[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that exactly Count messages of the kind match
// the fields.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Kind == a.Kind && matchFields(event.Fields, a.Fields) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Kind),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalStyle checks inline style properties of one element. An
// empty expected value asserts the property is unset.
func assertFinalStyle(r *Result, a Assertion) error {
	props := parseStyle(r.Styles[a.Element])
	keys := make([]string, 0, len(a.Style))
	for k := range a.Style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prop := range keys {
		want := a.Style[prop]
		if got := props[prop]; got != want {
			return &AssertionError{
				Type:     AssertFinalStyle,
				Expected: fmt.Sprintf("#%s %s = %q", a.Element, prop, want),
				Actual:   fmt.Sprintf("%q (style %q)", got, r.Styles[a.Element]),
			}
		}
	}
	return nil
}

// parseStyle splits "k: v; k: v" into a map.
func parseStyle(s string) map[string]string {
	out := map[string]string{}
	if s == "" {
		return out
	}
	for _, decl := range strings.Split(s, "; ") {
		k, v, ok := strings.Cut(decl, ": ")
		if ok {
			out[k] = v
		}
	}
	return out
}

func assertInstances(r *Result, a Assertion) error {
	if r.Instances != a.Count {
		return &AssertionError{
			Type:     AssertInstances,
			Expected: fmt.Sprintf("%d running instances", a.Count),
			Actual:   fmt.Sprintf("%d", r.Instances),
		}
	}
	return nil
}

func assertPlaying(r *Result, a Assertion) error {
	if got := r.Playing[a.ActionList]; got != a.Playing {
		return &AssertionError{
			Type:     AssertPlaying,
			Expected: fmt.Sprintf("%s playing=%t", a.ActionList, a.Playing),
			Actual:   fmt.Sprintf("playing=%t", got),
		}
	}
	return nil
}

func assertNotifications(r *Result, a Assertion) error {
	count := 0
	for _, n := range r.Notifications {
		if string(n.Kind) == a.Notification && (a.ActionList == "" || n.ActionListID == a.ActionList) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertNotifications,
			Expected: fmt.Sprintf("%d %s notifications", a.Count, a.Notification),
			Actual:   fmt.Sprintf("%d", count),
		}
	}
	return nil
}

// matchFields checks if actual contains all expected fields. Keys may be
// dotted paths into nested objects; extra keys in actual are ignored.
func matchFields(actual map[string]any, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := lookup(actual, key)
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func lookup(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// valuesEqual compares a decoded JSON value with a YAML value. Numbers
// compare by value whatever their Go type.
func valuesEqual(actual, expected any) bool {
	if af, ok := toFloat(actual); ok {
		ef, ok := toFloat(expected)
		return ok && af == ef
	}
	return reflect.DeepEqual(actual, expected)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalStyle:
			err = assertFinalStyle(result, a)
		case AssertInstances:
			err = assertInstances(result, a)
		case AssertPlaying:
			err = assertPlaying(result, a)
		case AssertNotifications:
			err = assertNotifications(result, a)
		case AssertReplayMatches:
			if !result.ReplayMatches {
				err = &AssertionError{Type: a.Type, Expected: "replayed hash matches snapshot", Actual: "mismatch"}
			}
		case AssertNoRuntimeError:
			if len(result.RuntimeErrors) > 0 {
				err = &AssertionError{Type: a.Type, Expected: "no runtime errors", Actual: strings.Join(result.RuntimeErrors, "; ")}
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
