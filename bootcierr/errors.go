// Package bootcierr defines the error taxonomy shared by every component of
// the bootstrap tournament: invalid arguments, degenerate replicate counts,
// diagnostics queried before a run, statistic domain violations, and a
// tournament where no candidate survived. Every engine, resampler, and the
// orchestrator raise one of these Kinds instead of a bare error, so callers
// can branch on failure category with errors.As.
package bootcierr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// InvalidArgument covers malformed parameters: B < 400, CL outside
	// (0.5,1), sample sizes too small, negative block lengths, and similar.
	InvalidArgument Kind = iota
	// DegenerateReplicates means fewer than ceil(B/2) bootstrap replicates
	// produced a finite statistic.
	DegenerateReplicates
	// DiagnosticsUnavailable means a diagnostic getter was called before
	// run() completed successfully at least once.
	DiagnosticsUnavailable
	// Domain means a statistic encountered an input outside its declared
	// domain (e.g. log of a non-positive value) under a strict policy.
	Domain
	// NoCandidateSucceeded means every enabled engine in a tournament
	// failed, so the selector has nothing to choose from.
	NoCandidateSucceeded
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case DegenerateReplicates:
		return "DegenerateReplicates"
	case DiagnosticsUnavailable:
		return "DiagnosticsUnavailable"
	case Domain:
		return "Domain"
	case NoCandidateSucceeded:
		return "NoCandidateSucceeded"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type raised across the tournament. Engine
// names the component that failed (e.g. "BCa", "PercentileBootstrap") so
// orchestrator log lines can report it without string-matching the message.
type Error struct {
	Kind   Kind
	Engine string
	Msg    string
	Cause  error
}

func (e *Error) Error() string {
	if e.Engine == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Engine, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Engine, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, bootcierr.New(bootcierr.Domain, "", "")) — more
// commonly they use errors.As and inspect Kind directly.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New constructs an Error of the given Kind.
func New(kind Kind, engine, msg string) *Error {
	return &Error{Kind: kind, Engine: engine, Msg: msg}
}

// Wrap constructs an Error of the given Kind wrapping an underlying cause.
func Wrap(kind Kind, engine, msg string, cause error) *Error {
	return &Error{Kind: kind, Engine: engine, Msg: msg, Cause: cause}
}

// InvalidArgumentf builds an InvalidArgument error with a formatted message.
func InvalidArgumentf(engine, format string, args ...any) *Error {
	return New(InvalidArgument, engine, fmt.Sprintf(format, args...))
}

// DegenerateReplicatesf builds a DegenerateReplicates error.
func DegenerateReplicatesf(engine string, effective, required uint64) *Error {
	return New(DegenerateReplicates, engine,
		fmt.Sprintf("too many degenerate replicates: %d usable, need >= %d", effective, required))
}

// DiagnosticsUnavailableErr builds a DiagnosticsUnavailable error.
func DiagnosticsUnavailableErr(engine string) *Error {
	return New(DiagnosticsUnavailable, engine, "run() has not been called on this instance, or the last run failed")
}

// DomainErrorf builds a Domain error.
func DomainErrorf(engine, format string, args ...any) *Error {
	return New(Domain, engine, fmt.Sprintf(format, args...))
}

// NoCandidateSucceededErr builds a NoCandidateSucceeded error.
func NoCandidateSucceededErr(engine string) *Error {
	return New(NoCandidateSucceeded, engine, "no bootstrap candidate succeeded")
}

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *Error; the second return is false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
