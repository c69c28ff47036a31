package collectors

import (
	"fmt"
	"strings"
)

// NotFoundError reports a missing record or account referenced by a collection
// request.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// UnsupportedPlatformError reports a platform key with no registered collector.
type UnsupportedPlatformError struct {
	Platform  string
	Supported []string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("no collector registered for platform %q (supported: %s)",
		e.Platform, strings.Join(e.Supported, ", "))
}

// TransformError reports a raw item that could not be mapped onto the
// canonical schema.
type TransformError struct {
	Platform string
	Kind     string
	Err      error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s %s: %v", e.Platform, e.Kind, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }
