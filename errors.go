package strata

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common failures.
var (
	// ErrEmptyLazyContext is returned when a lazy-load context is requested
	// with an empty property-name list.
	ErrEmptyLazyContext = errors.New("strata: empty lazy context request")

	// ErrUnknownProperty is returned when a query or load request names a
	// property the model never declared.
	ErrUnknownProperty = errors.New("strata: unknown property")

	// ErrNotPersisted is returned when an operation requires a persisted
	// entity but the given one was never saved.
	ErrNotPersisted = errors.New("strata: entity not persisted")
)

// DefinitionError reports an invalid property or model declaration.
// It is raised at definition time and is fatal to the declaration;
// the engine never recovers from it automatically.
type DefinitionError struct {
	Model    string // optional: owning model name
	Property string // optional: offending property name
	Reason   string
}

// Error returns the error string.
func (e *DefinitionError) Error() string {
	switch {
	case e.Model != "" && e.Property != "":
		return fmt.Sprintf("strata: %s.%s: %s", e.Model, e.Property, e.Reason)
	case e.Property != "":
		return fmt.Sprintf("strata: %s: %s", e.Property, e.Reason)
	default:
		return fmt.Sprintf("strata: %s", e.Reason)
	}
}

// NewDefinitionError returns a new DefinitionError for the given property.
func NewDefinitionError(property, format string, args ...any) *DefinitionError {
	return &DefinitionError{Property: property, Reason: fmt.Sprintf(format, args...)}
}

// IsDefinition reports whether err is a DefinitionError.
func IsDefinition(err error) bool {
	if err == nil {
		return false
	}
	var e *DefinitionError
	return errors.As(err, &e)
}

// UsageError reports a caller mistake detected synchronously: an empty
// lazy-context request, a query against the wrong repository, an
// unsupported raw-statement invocation.
type UsageError struct {
	Op  string
	Err error
}

// Error returns the error string.
func (e *UsageError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("strata: %s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error, so errors.Is works against the
// sentinels above.
func (e *UsageError) Unwrap() error { return e.Err }

// NewUsageError wraps err as a UsageError for the given operation.
func NewUsageError(op string, err error) *UsageError {
	return &UsageError{Op: op, Err: err}
}

// IsUsage reports whether err is a UsageError.
func IsUsage(err error) bool {
	if err == nil {
		return false
	}
	var e *UsageError
	return errors.As(err, &e)
}
