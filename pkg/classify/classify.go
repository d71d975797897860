// Package classify provides the failure taxonomy and retry backoff
// calculations used by the resilient sampler. Raw transport errors are
// converted into a single tagged ClassifiedError carrying a machine-readable
// kind, severity, retryability and optional transport metadata.
package classify

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies a failure category.
type Kind string

const (
	KindBadRequest          Kind = "BAD_REQUEST"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindForbidden           Kind = "FORBIDDEN"
	KindNotFound            Kind = "NOT_FOUND"
	KindConflict            Kind = "CONFLICT"
	KindRequestTimeout      Kind = "REQUEST_TIMEOUT"
	KindRateLimit           Kind = "RATE_LIMIT"
	KindInternalServerError Kind = "INTERNAL_SERVER_ERROR"
	KindBadGateway          Kind = "BAD_GATEWAY"
	KindServiceUnavailable  Kind = "SERVICE_UNAVAILABLE"
	KindGatewayTimeout      Kind = "GATEWAY_TIMEOUT"
	KindValidation          Kind = "VALIDATION"
	KindConfiguration       Kind = "CONFIGURATION"
	KindTypeConflict        Kind = "TYPE_CONFLICT"
	KindBudgetExhausted     Kind = "BUDGET_EXHAUSTED"
	KindAborted             Kind = "ABORTED"
	KindUnknown             Kind = "UNKNOWN"
)

// Severity grades a failure for logging and alerting.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Metadata carries optional transport-level detail about a failure.
type Metadata struct {
	StatusCode    int           `json:"status_code,omitempty"`
	Substatus     int           `json:"substatus,omitempty"`
	ActivityID    string        `json:"activity_id,omitempty"`
	RetryAfter    time.Duration `json:"retry_after,omitempty"`
	RequestCharge float64       `json:"request_charge,omitempty"`
}

// Context records where and when a failure was observed.
type Context struct {
	Component string         `json:"component,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// ClassifiedError is the module's error currency: one tagged union instead of
// a class hierarchy per HTTP status. Created once per failure, immutable
// thereafter.
type ClassifiedError struct {
	Kind      Kind
	Severity  Severity
	Retryable bool
	Message   string
	Context   Context
	Metadata  Metadata
	Cause     error
}

func (e *ClassifiedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// Is matches on kind so callers can use errors.Is with a bare kind sentinel.
func (e *ClassifiedError) Is(target error) bool {
	var ce *ClassifiedError
	if errors.As(target, &ce) {
		return e.Kind == ce.Kind
	}
	return false
}

// StatusCoder is implemented by transport errors that expose an HTTP-like
// status code.
type StatusCoder interface {
	StatusCode() int
}

// ResponseError is the raw shape produced by container transports. Classify
// consumes it; nothing else in the module should.
type ResponseError struct {
	Status        int
	Substatus     int
	ActivityID    string
	RetryAfter    time.Duration
	RequestCharge float64
	Retryable     *bool // explicit override when the transport knows better
	Message       string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status %d", e.Status)
}

func (e *ResponseError) StatusCode() int { return e.Status }

// kindForStatus maps an HTTP status to (kind, retryable, severity).
func kindForStatus(status int) (Kind, bool, Severity) {
	switch status {
	case 400:
		return KindBadRequest, false, SeverityMedium
	case 401:
		return KindUnauthorized, false, SeverityHigh
	case 403:
		return KindForbidden, false, SeverityHigh
	case 404:
		return KindNotFound, false, SeverityLow
	case 408:
		return KindRequestTimeout, true, SeverityMedium
	case 409:
		return KindConflict, false, SeverityMedium
	case 429:
		return KindRateLimit, true, SeverityLow
	case 500:
		return KindInternalServerError, true, SeverityHigh
	case 502:
		return KindBadGateway, true, SeverityMedium
	case 503:
		return KindServiceUnavailable, true, SeverityMedium
	case 504:
		return KindGatewayTimeout, true, SeverityMedium
	}
	if status >= 500 && status < 600 {
		return KindInternalServerError, true, SeverityHigh
	}
	return KindUnknown, false, SeverityMedium
}

// retryableByMessage applies message heuristics when no status is available.
func retryableByMessage(msg string) bool {
	m := strings.ToLower(msg)
	for _, hint := range []string{"timeout", "rate", "throttle", "too many requests", "service unavailable"} {
		if strings.Contains(m, hint) {
			return true
		}
	}
	return false
}

// Classify converts a raw failure into a ClassifiedError. Already-classified
// errors pass through unchanged, so classification is idempotent.
func Classify(err error, component string) *ClassifiedError {
	if err == nil {
		return nil
	}

	var already *ClassifiedError
	if errors.As(err, &already) {
		return already
	}

	ce := &ClassifiedError{
		Kind:      KindUnknown,
		Severity:  SeverityMedium,
		Retryable: false,
		Message:   err.Error(),
		Context:   Context{Component: component, Timestamp: time.Now().UTC()},
		Cause:     err,
	}

	var resp *ResponseError
	if errors.As(err, &resp) {
		ce.Kind, ce.Retryable, ce.Severity = kindForStatus(resp.Status)
		ce.Metadata = Metadata{
			StatusCode:    resp.Status,
			Substatus:     resp.Substatus,
			ActivityID:    resp.ActivityID,
			RetryAfter:    resp.RetryAfter,
			RequestCharge: resp.RequestCharge,
		}
		if resp.Message != "" {
			ce.Message = resp.Message
		}
		if resp.Retryable != nil {
			ce.Retryable = *resp.Retryable
		}
		return ce
	}

	var coder StatusCoder
	if errors.As(err, &coder) {
		ce.Kind, ce.Retryable, ce.Severity = kindForStatus(coder.StatusCode())
		ce.Metadata.StatusCode = coder.StatusCode()
		return ce
	}

	// No status anywhere. Fall back to message heuristics.
	if retryableByMessage(err.Error()) {
		ce.Retryable = true
	}
	return ce
}

// NewValidation reports bad input shape or size. Never retryable.
func NewValidation(component, format string, args ...any) *ClassifiedError {
	return &ClassifiedError{
		Kind:     KindValidation,
		Severity: SeverityMedium,
		Message:  fmt.Sprintf(format, args...),
		Context:  Context{Component: component, Timestamp: time.Now().UTC()},
	}
}

// NewConfiguration reports malformed configuration. Never retryable.
func NewConfiguration(component, format string, args ...any) *ClassifiedError {
	return &ClassifiedError{
		Kind:     KindConfiguration,
		Severity: SeverityHigh,
		Message:  fmt.Sprintf(format, args...),
		Context:  Context{Component: component, Timestamp: time.Now().UTC()},
	}
}

// NewTypeConflict reports an unresolvable type conflict under the "error"
// conflict strategy.
func NewTypeConflict(component, field string, types []string) *ClassifiedError {
	return &ClassifiedError{
		Kind:     KindTypeConflict,
		Severity: SeverityMedium,
		Message:  fmt.Sprintf("field %q has conflicting types: %s", field, strings.Join(types, ", ")),
		Context: Context{
			Component: component,
			Timestamp: time.Now().UTC(),
			Detail:    map[string]any{"field": field, "types": types},
		},
	}
}

// NewBudgetExhausted labels a retry give-up caused by the RU budget ceiling,
// distinct from the underlying retryable failure so callers can tell
// "gave up due to policy" from "the server never recovered".
func NewBudgetExhausted(component string, consumed, budget float64, cause error) *ClassifiedError {
	return &ClassifiedError{
		Kind:     KindBudgetExhausted,
		Severity: SeverityHigh,
		Message:  fmt.Sprintf("retry RU budget exhausted: consumed %.1f of %.1f", consumed, budget),
		Context: Context{
			Component: component,
			Timestamp: time.Now().UTC(),
			Detail:    map[string]any{"consumed_ru": consumed, "budget_ru": budget},
		},
		Cause: cause,
	}
}

// NewAborted reports a cancelled retry wait.
func NewAborted(component string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Kind:     KindAborted,
		Severity: SeverityLow,
		Message:  "sampling aborted",
		Context:  Context{Component: component, Timestamp: time.Now().UTC()},
		Cause:    cause,
	}
}
