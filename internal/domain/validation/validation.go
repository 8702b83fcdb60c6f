// Package validation evaluates ordered rule lists against a candidate value
// and returns either the value or every broken rule's message.
package validation

import "strings"

// Error is a single broken rule, optionally tagged with the form field it
// belongs to.
type Error struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Errors is an ordered list of broken rules.
type Errors []Error

func (es Errors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ForField returns the messages attached to field, in order.
func (es Errors) ForField(field string) []string {
	var out []string
	for _, e := range es {
		if e.Field == field {
			out = append(out, e.Message)
		}
	}
	return out
}

// Rule pairs a message with an already evaluated "is broken" predicate.
type Rule struct {
	Message string
	Broken  bool
}

// Check builds a Rule.
func Check(message string, broken bool) Rule {
	return Rule{Message: message, Broken: broken}
}

// Result holds either a valid value or the errors that made it invalid.
type Result[T any] struct {
	value T
	errs  Errors
	ok    bool
}

// Ok wraps a valid value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Fail builds an invalid result. A Fail with no errors is still invalid.
func Fail[T any](errs ...Error) Result[T] {
	return Result[T]{errs: errs}
}

// Validate returns Ok(v) when no rule is broken, otherwise the messages of
// the broken rules in the order they were given.
func Validate[T any](v T, rules ...Rule) Result[T] {
	var errs Errors
	for _, r := range rules {
		if r.Broken {
			errs = append(errs, Error{Message: r.Message})
		}
	}
	if len(errs) > 0 {
		return Fail[T](errs...)
	}
	return Ok(v)
}

func (r Result[T]) IsValid() bool { return r.ok }

// Value returns the wrapped value, or the zero value when invalid.
func (r Result[T]) Value() T { return r.value }

func (r Result[T]) Errors() Errors { return r.errs }

// Unwrap returns the value, or the error list as an error.
func (r Result[T]) Unwrap() (T, error) {
	if !r.ok {
		var zero T
		return zero, r.errs
	}
	return r.value, nil
}

// Map transforms a valid value and passes errors through.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if !r.ok {
		return Fail[U](r.errs...)
	}
	return Ok(f(r.value))
}

// Collector aggregates the results of several field parsers into one
// object-level result. Errors keep the order in which fields were added.
type Collector struct {
	errs   Errors
	failed bool
}

// Field records the outcome of a field parser and returns its value
// (zero when invalid). Nested field names are joined with a dot.
func Field[T any](c *Collector, name string, r Result[T]) T {
	if !r.ok {
		c.failed = true
		for _, e := range r.errs {
			switch {
			case e.Field == "":
				e.Field = name
			case name != "":
				e.Field = name + "." + e.Field
			}
			c.errs = append(c.errs, e)
		}
	}
	return r.value
}

// Check records object-level rules under the given field name.
func (c *Collector) Check(name string, rules ...Rule) {
	for _, r := range rules {
		if r.Broken {
			c.failed = true
			c.errs = append(c.errs, Error{Field: name, Message: r.Message})
		}
	}
}

func (c *Collector) Failed() bool { return c.failed }

// Finish returns Ok(v) if every field was valid, otherwise the flattened
// list of all collected errors.
func Finish[T any](c *Collector, v T) Result[T] {
	if c.failed {
		return Fail[T](c.errs...)
	}
	return Ok(v)
}
