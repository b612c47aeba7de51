package cache

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrInvalidOptions is wrapped by every Options validation failure.
	ErrInvalidOptions = errors.New("cache: invalid options")
	// ErrNilKey is returned when a nil pointer/map/chan/func/interface is used as a key.
	ErrNilKey = errors.New("cache: key must not be nil")
	// ErrNilValue is returned by Put when the value is nil.
	ErrNilValue = errors.New("cache: value must not be nil")
	// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
	ErrNoLoader = errors.New("cache: no Loader provided")
	// ErrNotFound is returned by GetOrLoad when the Loader produced no value.
	ErrNotFound = errors.New("cache: loader returned no value")
)

// LoadError reports a Loader failure for a specific key.
type LoadError struct {
	Key any
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cache: load %v: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError wraps err with the key that failed. An existing *LoadError is
// returned unchanged.
func NewLoadError(key any, err error) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	return &LoadError{Key: key, Err: err}
}

// isNil reports whether v is a nil interface or a nil pointer, map, chan,
// func or interface. Nil slices are valid values and are not reported.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
