package statsopts

import "fmt"

// TypeError reports an option whose container or element type is wrong.
// Message texts are part of the options contract shared with workers and
// must not change between releases.
type TypeError struct {
	Field string
	msg   string
}

func (e *TypeError) Error() string { return e.msg }

// ValueError reports a numeric option outside its valid domain, or the
// sample_count/sample_rate exclusion violation.
type ValueError struct {
	Field string
	msg   string
}

func (e *ValueError) Error() string { return e.msg }

func typeErrorf(field, format string, args ...interface{}) error {
	return &TypeError{Field: field, msg: fmt.Sprintf(format, args...)}
}

func valueErrorf(field, format string, args ...interface{}) error {
	return &ValueError{Field: field, msg: fmt.Sprintf(format, args...)}
}
