// Package faults defines the severity taxonomy that governs whether the
// analysis pipeline halts, degrades, or surfaces a required user decision.
package faults

import (
	"errors"
	"strings"
)

// CriticalKind identifies the sub-category of a CriticalError.
type CriticalKind string

const (
	KindValidation    CriticalKind = "validation"
	KindConfiguration CriticalKind = "configuration"
	KindResource      CriticalKind = "resource"
	KindTimeout       CriticalKind = "timeout"
)

// CriticalError stops the pipeline. The run is recorded as failed and the
// caller receives a generic processing failure.
type CriticalError struct {
	Kind CriticalKind
	Err  error
}

func (e *CriticalError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *CriticalError) Unwrap() error {
	return e.Err
}

// Critical wraps err as a CriticalError of the given kind.
func Critical(kind CriticalKind, err error) *CriticalError {
	return &CriticalError{Kind: kind, Err: err}
}

// InputType identifies what a NeedsInputError is asking the user for.
type InputType string

const (
	InputScale        InputType = "scale"
	InputPlanQuality  InputType = "plan_quality"
	InputEnvelopeGaps InputType = "envelope_gaps"
)

// NeedsInputError is a CriticalError that is expected and actionable: two
// independent stages produced contradictory determinations, or a required
// value cannot be derived from the drawing. It carries enough structure for
// the caller to prompt a human instead of treating it as a bug.
type NeedsInputError struct {
	InputType InputType
	Locked    any
	Attempted any
	Hint      string
	Details   map[string]any
}

func (e *NeedsInputError) Error() string {
	var sb strings.Builder
	sb.WriteString("needs input (")
	sb.WriteString(string(e.InputType))
	sb.WriteString(")")
	if e.Hint != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Hint)
	}
	return sb.String()
}

// NonCriticalKind identifies the sub-category of a NonCriticalError.
type NonCriticalKind string

const (
	KindAudit       NonCriticalKind = "audit"
	KindDataQuality NonCriticalKind = "data_quality"
)

// NonCriticalError is logged and attached to the result as a warning;
// processing continues.
type NonCriticalError struct {
	Kind NonCriticalKind
	Err  error
}

func (e *NonCriticalError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *NonCriticalError) Unwrap() error {
	return e.Err
}

// NonCritical wraps err as a NonCriticalError of the given kind.
func NonCritical(kind NonCriticalKind, err error) *NonCriticalError {
	return &NonCriticalError{Kind: kind, Err: err}
}

// IsCritical reports whether err (or anything in its chain) must stop the
// pipeline. NeedsInputError counts as critical.
func IsCritical(err error) bool {
	if err == nil {
		return false
	}
	var ce *CriticalError
	if errors.As(err, &ce) {
		return true
	}
	var ni *NeedsInputError
	return errors.As(err, &ni)
}

// AsNeedsInput extracts a NeedsInputError from the chain, if present.
func AsNeedsInput(err error) (*NeedsInputError, bool) {
	var ni *NeedsInputError
	if errors.As(err, &ni) {
		return ni, true
	}
	return nil, false
}

// Categorize routes an arbitrary error into the stop/continue taxonomy.
// Already-classified errors pass through unchanged; everything else is
// matched against message patterns so unexpected failures still follow the
// two-tier policy instead of crashing uncontrolled.
func Categorize(err error) error {
	if err == nil {
		return nil
	}

	var ce *CriticalError
	if errors.As(err, &ce) {
		return err
	}
	var ni *NeedsInputError
	if errors.As(err, &ni) {
		return err
	}
	var nce *NonCriticalError
	if errors.As(err, &nce) {
		return err
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "deadline exceeded", "context canceled", "timeout", "timed out"):
		return Critical(KindTimeout, err)
	case containsAny(msg, "no such file", "permission denied", "file does not exist", "cannot open"):
		return Critical(KindResource, err)
	case containsAny(msg, "database", "sql", "constraint", "connection refused"):
		return NonCritical(KindAudit, err)
	default:
		return Critical(KindValidation, err)
	}
}

func containsAny(s string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
