package model

// ErrorKind classifies why a lookup failed.
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindTransport  ErrorKind = "transport"
	ErrorKindParse      ErrorKind = "parse"
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindInternal   ErrorKind = "internal"
)

// Outcome is the result of one structured lookup.
//
// OK with a nil Value means the model explicitly answered "unknown"; that is a
// valid result, not a failure. A failed Outcome never carries a Value.
type Outcome[T any] struct {
	OK    bool      `json:"ok"`
	Value *T        `json:"value,omitempty"`
	Kind  ErrorKind `json:"kind,omitempty"`
	Err   string    `json:"error,omitempty"`
}

// Succeeded builds a successful Outcome. value may be nil.
func Succeeded[T any](value *T) Outcome[T] {
	return Outcome[T]{OK: true, Value: value}
}

// Failed builds a failed Outcome.
func Failed[T any](kind ErrorKind, msg string) Outcome[T] {
	return Outcome[T]{Kind: kind, Err: msg}
}

// Unknown reports whether the lookup succeeded without a value.
func (o Outcome[T]) Unknown() bool {
	return o.OK && o.Value == nil
}

// ValueOrNil collapses failure and "unknown" into nil.
func (o Outcome[T]) ValueOrNil() *T {
	if !o.OK {
		return nil
	}
	return o.Value
}

// LookupStatus summarizes an Outcome without its value.
type LookupStatus string

const (
	LookupFound   LookupStatus = "found"
	LookupUnknown LookupStatus = "unknown"
	LookupFailed  LookupStatus = "failed"
)

// Status returns the summary status of the Outcome.
func (o Outcome[T]) Status() LookupStatus {
	switch {
	case !o.OK:
		return LookupFailed
	case o.Value == nil:
		return LookupUnknown
	default:
		return LookupFound
	}
}
