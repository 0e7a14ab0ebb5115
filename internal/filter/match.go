// Package filter provides generic, normalized predicate matching used by the
// discovery engine's hard (pass/fail) filters.
package filter

import (
	"strconv"
	"strings"
)

// Predicate defines a function that returns true if the given item matches a condition.
type Predicate[T any] func(item T, filterValue string) bool

// Options holds configuration for filtering behavior.
type Options[T any] struct {
	matchers map[string]Predicate[T]
	logFunc  func(key string, val string)
}

// Option configures filter Options.
type Option[T any] func(*Options[T]) error

func defaultOptions[T any]() Options[T] {
	return Options[T]{
		matchers: make(map[string]Predicate[T]),
		logFunc:  func(key, val string) {}, // no-op
	}
}

// NewOptions creates filter Options with defaults and applies given options.
func NewOptions[T any](opt ...Option[T]) (Options[T], error) {
	opts := defaultOptions[T]()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return Options[T]{}, err
		}
	}
	return opts, nil
}

// NormalizeString can be used to normalize a string value for filtering/comparison.
// The value is made lowercase and has any leading and/or trailing whitespace removed.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeSlice can be used to normalize all values of a slice, returning a new slice.
// The values are normalized with the same behavior as NormalizeString.
func NormalizeSlice(s []string) []string {
	s2 := make([]string, len(s))
	for i := range s {
		s2[i] = NormalizeString(s[i])
	}
	return s2
}

// NormalizeSet normalizes values into a set for membership tests.
// Empty values are dropped.
func NormalizeSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		n := NormalizeString(v)
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}

// Provider encapsulates the logic for extracting a value of type V from an item of type T.
type Provider[T any, V any] func(T) V

// BoolValueProvider extracts a single boolean value from an item of type T.
type BoolValueProvider[T any] Provider[T, bool]

// StringValueProvider extracts a single string value from an item of type T.
type StringValueProvider[T any] Provider[T, string]

// StringValuesProvider extracts a slice of string values from an item of type T.
type StringValuesProvider[T any] Provider[T, []string]

// Equals returns a Predicate that checks if the value extracted by the provider
// exactly matches the filter value (case-insensitive, normalized).
func Equals[T any](provider StringValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		return NormalizeString(provider(item)) == NormalizeString(val)
	}
}

// EqualsBool returns a Predicate that checks if the value extracted by the provider
// matches the parsed boolean representation of the filter value.
func EqualsBool[T any](provider BoolValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		parsedVal, err := strconv.ParseBool(NormalizeString(val))
		if err != nil {
			return false
		}
		return provider(item) == parsedVal
	}
}

// HasAll returns a Predicate that checks if the values extracted by the provider include *ALL*
// of the comma-separated values in the filter string (case-insensitive, normalized).
func HasAll[T any](provider StringValuesProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		required := NormalizeSlice(strings.Split(val, ","))
		allowed := NormalizeSet(provider(item))

		for _, r := range required {
			if r == "" {
				continue
			}
			if _, ok := allowed[r]; !ok {
				return false
			}
		}
		return true
	}
}

// HasAny returns a Predicate that checks if the values extracted by the provider include *ANY*
// of the comma-separated values in the filter string (case-insensitive, normalized).
func HasAny[T any](provider StringValuesProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		requested := NormalizeSet(strings.Split(val, ","))
		for _, v := range provider(item) {
			if _, ok := requested[NormalizeString(v)]; ok {
				return true
			}
		}
		return false
	}
}

// ExcludesAll returns a Predicate that passes only when *NONE* of the comma-separated
// values in the filter string are present in the values extracted by the provider.
func ExcludesAll[T any](provider StringValuesProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		banned := NormalizeSet(strings.Split(val, ","))
		for _, v := range provider(item) {
			if _, ok := banned[NormalizeString(v)]; ok {
				return false
			}
		}
		return true
	}
}

// WithMatchers adds or overrides matchers.
func WithMatchers[T any](m map[string]Predicate[T]) Option[T] {
	return func(o *Options[T]) error {
		for k, v := range m {
			o.matchers[NormalizeString(k)] = v
		}
		return nil
	}
}

// WithMatcher adds or overrides a matcher.
func WithMatcher[T any](key string, value Predicate[T]) Option[T] {
	return func(o *Options[T]) error {
		o.matchers[NormalizeString(key)] = value
		return nil
	}
}

// WithLogFunc sets a log function which will be used to log info if filter keys with no matcher are encountered.
func WithLogFunc[T any](logFunc func(key string, val string)) Option[T] {
	return func(o *Options[T]) error {
		if logFunc != nil {
			o.logFunc = logFunc
		}
		return nil
	}
}

// Match applies the provided filters to an item of type T using any configured Option matchers.
// Filter keys with no registered matcher are logged and skipped; a filter whose matcher
// rejects the item fails the whole match.
func Match[T any](item T, filters map[string]string, opts ...Option[T]) (bool, error) {
	if filters == nil {
		return true, nil
	}

	filterOpts, err := NewOptions(opts...)
	if err != nil {
		return false, err
	}

	for key, val := range filters {
		k := NormalizeString(key)
		if k == "" {
			continue
		}

		matcher, ok := filterOpts.matchers[k]
		if !ok {
			filterOpts.logFunc(k, val)
			continue
		}
		if !matcher(item, val) {
			return false, nil
		}
	}
	return true, nil
}
