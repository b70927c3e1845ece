package recordrig

import "github.com/wagiedev/recordrig-go/internal/errors"

// Re-export error types from internal package

// RigError is the base interface for all rig errors.
type RigError = errors.RigError

// ValidationError indicates an out-of-range argument. Nothing is written
// to the device when it is returned.
type ValidationError = errors.ValidationError

// TransportError indicates an open, write, read or close failure.
type TransportError = errors.TransportError

// ProbabilityError indicates a probability vector that does not sum to 1.
type ProbabilityError = errors.ProbabilityError

// TrialListFormatError indicates a saved trial list that could not be parsed.
type TrialListFormatError = errors.TrialListFormatError

// InvalidROIError indicates an unknown region of interest.
type InvalidROIError = errors.InvalidROIError

// Re-export sentinel errors from internal package.
var (
	// ErrTransportNotOpen indicates a command was issued before the transport was opened.
	ErrTransportNotOpen = errors.ErrTransportNotOpen

	// ErrResponseTimeout indicates no acknowledgment arrived in time.
	ErrResponseTimeout = errors.ErrResponseTimeout

	// ErrSessionInterrupted indicates the trial loop stopped before all trials ran.
	ErrSessionInterrupted = errors.ErrSessionInterrupted

	// ErrNoTrials indicates a trial count below one.
	ErrNoTrials = errors.ErrNoTrials

	// ErrEmptyAxis indicates a level or feeder set with no values.
	ErrEmptyAxis = errors.ErrEmptyAxis

	// ErrInvalidProbabilities indicates probabilities that do not sum to 1.
	ErrInvalidProbabilities = errors.ErrInvalidProbabilities

	// ErrAlreadyRun indicates a second Run on a session controller.
	ErrAlreadyRun = errors.ErrAlreadyRun
)
