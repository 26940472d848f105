package mapper

import "errors"

var (
	ErrMalformed        = errors.New("malformed weather document")
	ErrInvalidTimestamp = errors.New("invalid observation date/time")
)

// MappingError reports why a document could not be mapped. Kind is one of
// ErrMalformed or ErrInvalidTimestamp; errors.Is matches both Kind and the cause.
type MappingError struct {
	Kind error
	Err  error
}

func (e *MappingError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *MappingError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func malformed(err error) error {
	return &MappingError{Kind: ErrMalformed, Err: err}
}

func invalidTimestamp(err error) error {
	return &MappingError{Kind: ErrInvalidTimestamp, Err: err}
}
