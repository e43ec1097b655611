package agent

import "errors"

// Sentinel errors for the lifecycle operations. All are locally detected and
// reported to the operator; none triggers an automatic retry.
var (
	ErrInvalidName        = errors.New("invalid agent name")
	ErrDuplicateAgent     = errors.New("agent already exists")
	ErrAgentNotFound      = errors.New("agent not found")
	ErrInvalidCount       = errors.New("invalid count")
	ErrAgentBinaryMissing = errors.New("agent executable not found")
	ErrSignalFailure      = errors.New("could not signal agent process")
)
