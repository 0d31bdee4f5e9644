package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorClass tells a caller what to do with an error: retry it, fix the
// input, or give up.
type ErrorClass int

const (
	// ErrorTransient errors may succeed if the operation is repeated later
	ErrorTransient ErrorClass = iota
	// ErrorInvalid errors are caused by the caller's input or configuration
	ErrorInvalid
	// ErrorFatal errors leave the operation with no way forward
	ErrorFatal
)

var classNames = [...]string{
	ErrorTransient: "transient",
	ErrorInvalid:   "invalid",
	ErrorFatal:     "fatal",
}

func (c ErrorClass) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Generic sentinels. Package-specific errors wrap one of these so callers
// can match either.
var (
	ErrShuttingDown      = errors.New("shutting down")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrConfigNotFound    = errors.New("configuration not found")
	ErrInvalidData       = errors.New("invalid data")
	ErrParsingFailed     = errors.New("parsing failed")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrJobPanicked       = errors.New("job panicked")
)

// sentinelClasses gives the class of an unclassified error by the first
// sentinel found in its chain, most severe first.
var sentinelClasses = []struct {
	sentinel error
	class    ErrorClass
}{
	{ErrJobPanicked, ErrorFatal},
	{ErrResourceExhausted, ErrorFatal},
	{ErrInvalidConfig, ErrorInvalid},
	{ErrConfigNotFound, ErrorInvalid},
	{ErrInvalidData, ErrorInvalid},
	{ErrParsingFailed, ErrorInvalid},
	{ErrShuttingDown, ErrorTransient},
	{context.Canceled, ErrorTransient},
	{context.DeadlineExceeded, ErrorTransient},
}

// ClassifiedError carries an explicit class and the operation that failed
type ClassifiedError struct {
	Class     ErrorClass
	Component string
	Operation string
	Err       error
}

func (ce *ClassifiedError) Error() string {
	return ce.Err.Error()
}

func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Classify returns the class of err. An explicit ClassifiedError wins over
// sentinels in the chain; an error matching neither is transient.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}

	for _, sc := range sentinelClasses {
		if errors.Is(err, sc.sentinel) {
			return sc.class
		}
	}
	return ErrorTransient
}

// IsTransient reports whether a non-nil err is worth retrying
func IsTransient(err error) bool {
	return err != nil && Classify(err) == ErrorTransient
}

// IsInvalid reports whether err was caused by bad input or configuration
func IsInvalid(err error) bool {
	return err != nil && Classify(err) == ErrorInvalid
}

// IsFatal reports whether err is unrecoverable
func IsFatal(err error) bool {
	return err != nil && Classify(err) == ErrorFatal
}

// Wrap adds "component.method: action failed" context to err. The class of
// err is unchanged.
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps err with context and classifies it transient
func WrapTransient(err error, component, method, action string) error {
	return wrapAs(ErrorTransient, err, component, method, action)
}

// WrapInvalid wraps err with context and classifies it invalid
func WrapInvalid(err error, component, method, action string) error {
	return wrapAs(ErrorInvalid, err, component, method, action)
}

// WrapFatal wraps err with context and classifies it fatal
func WrapFatal(err error, component, method, action string) error {
	return wrapAs(ErrorFatal, err, component, method, action)
}

func wrapAs(class ErrorClass, err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{
		Class:     class,
		Component: component,
		Operation: method,
		Err:       Wrap(err, component, method, action),
	}
}
