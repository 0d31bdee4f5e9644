// Package errors provides the three-class error classification used by the
// thread pool and its supporting packages.
//
// # Error Classification
//
//   - Transient: temporary conditions such as shutdown in progress or context
//     cancellation
//   - Invalid: malformed input or configuration rejected before any work starts
//   - Fatal: resource exhaustion or a job that panicked
//
// Classify looks for an explicit class first (a ClassifiedError anywhere in
// the chain) and then for one of the package sentinels. Context cancellation
// counts as transient. Anything else is treated as transient.
//
// # Error Wrapping Pattern
//
// All wrapping follows the format:
//
//	"component.method: action failed: %w"
//
// Three wrappers set the class explicitly:
//
//	errors.WrapTransient(err, "Pool", "Submit", "enqueue job")
//	errors.WrapInvalid(err, "Pool", "New", "validate thread count")
//	errors.WrapFatal(err, "Pool", "New", "spawn workers")
//
// Wrap adds context without changing the class of the wrapped error.
//
// # Mapping to the pool
//
// The worker package builds its own sentinels on top of these:
//
//   - a negative thread count wraps ErrInvalidConfig and is returned through
//     WrapInvalid
//   - a thread count above the runtime ceiling wraps ErrResourceExhausted and
//     is returned through WrapFatal
//   - a recovered job panic wraps ErrJobPanicked
//
// Callers can therefore check either the specific sentinel or the generic one:
//
//	pool, err := worker.New(n)
//	if errors.Is(err, errors.ErrInvalidConfig) {
//	    // caller supplied a bad size
//	}
package errors
