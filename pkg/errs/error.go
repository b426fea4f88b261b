package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidate         = errors.New("validation")
	ErrStateUnavailable = errors.New("state unavailable")
)

// StateError reports a state backend failure for a showable item.
type StateError struct {
	Op  string
	Key string
	Err error
}

func NewStateError(op string, key string, err error) *StateError {
	return &StateError{
		Op:  op,
		Key: key,
		Err: err,
	}
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %q: %s: %v", e.Op, e.Key, ErrStateUnavailable, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

func (e *StateError) Is(target error) bool {
	return target == ErrStateUnavailable
}

// ValidateError carries the failed fields keyed by path.
type ValidateError struct {
	err     error
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func NewValidateError(err error) *ValidateError {
	return &ValidateError{
		err:     err,
		Message: err.Error(),
		Fields:  make(map[string]string),
	}
}

func (e *ValidateError) Error() string {
	if len(e.Fields) == 0 {
		return e.err.Error()
	}
	paths := make([]string, 0, len(e.Fields))
	for path := range e.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	details := make([]string, 0, len(paths))
	for _, path := range paths {
		details = append(details, path+": "+e.Fields[path])
	}
	return e.err.Error() + ": " + strings.Join(details, "; ")
}

func (e *ValidateError) Unwrap() error {
	return e.err
}
