package errors

import (
	"errors"
	"fmt"
)

// RigError is the base interface for all rig errors.
type RigError interface {
	error
	IsRigError() bool
}

// Compile-time verification that all error types implement RigError.
var (
	_ RigError = (*ValidationError)(nil)
	_ RigError = (*TransportError)(nil)
	_ RigError = (*ProbabilityError)(nil)
	_ RigError = (*TrialListFormatError)(nil)
	_ RigError = (*InvalidROIError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrTransportNotOpen indicates a command was issued before the transport was opened.
	ErrTransportNotOpen = errors.New("transport not open")

	// ErrResponseTimeout indicates no acknowledgment frame arrived before the read timeout.
	ErrResponseTimeout = errors.New("response timeout")

	// ErrSessionInterrupted indicates the trial loop was stopped before all trials ran.
	ErrSessionInterrupted = errors.New("session interrupted")

	// ErrNoTrials indicates a trial count below one.
	ErrNoTrials = errors.New("trial count must be at least 1")

	// ErrEmptyAxis indicates a level or feeder set with no values.
	ErrEmptyAxis = errors.New("axis has no values")

	// ErrInvalidProbabilities indicates a probability vector that does not sum to 1.
	ErrInvalidProbabilities = errors.New("probabilities do not sum to 1")

	// ErrAlreadyRun indicates a session controller was asked to run a second session.
	ErrAlreadyRun = errors.New("session controller already ran")
)

// ValidationError indicates a command or configuration argument outside its
// permitted range. It is always returned before any byte reaches the transport.
type ValidationError struct {
	Field      string
	Value      any
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Constraint)
}

// IsRigError implements RigError.
func (e *ValidationError) IsRigError() bool { return true }

// TransportError indicates the underlying channel failed to open, write, read or close.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRigError implements RigError.
func (e *TransportError) IsRigError() bool { return true }

// ProbabilityError indicates a probability vector that does not sum to exactly 1.
type ProbabilityError struct {
	Axis string
	Sum  float64
}

func (e *ProbabilityError) Error() string {
	return fmt.Sprintf("%s probabilities sum to %v, want 1", e.Axis, e.Sum)
}

func (e *ProbabilityError) Unwrap() error {
	return ErrInvalidProbabilities
}

// IsRigError implements RigError.
func (e *ProbabilityError) IsRigError() bool { return true }

// TrialListFormatError indicates a saved trial list that could not be parsed.
type TrialListFormatError struct {
	Path string
	Line int
	Err  error
}

func (e *TrialListFormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("trial list %s line %d: %v", e.Path, e.Line, e.Err)
	}

	return fmt.Sprintf("trial list %s: %v", e.Path, e.Err)
}

func (e *TrialListFormatError) Unwrap() error {
	return e.Err
}

// IsRigError implements RigError.
func (e *TrialListFormatError) IsRigError() bool { return true }

// InvalidROIError indicates a region-of-interest identifier that names no
// tracked zone.
type InvalidROIError struct {
	Value string
}

func (e *InvalidROIError) Error() string {
	return fmt.Sprintf("invalid region of interest %q: not a tracked zone or feeder", e.Value)
}

// IsRigError implements RigError.
func (e *InvalidROIError) IsRigError() bool { return true }
