// Package exitcode exports driveclone's exit status numbers.
package exitcode

import "github.com/rclone/driveclone/fs/fserrors"

const (
	// Success is returned when driveclone finished without error.
	Success = iota
	// UsageError is returned when there was a syntax or usage error in the arguments.
	UsageError
	// UncategorizedError is returned for any error not categorised otherwise.
	UncategorizedError
	// InvalidReference is returned when no ID could be found in the source reference.
	InvalidReference
	// NotFound is returned when the source or an item in it doesn't exist.
	NotFound
	// NotAFolder is returned when the source isn't a folder.
	NotAFolder
	// RetryError is returned when a remote call kept failing transiently.
	RetryError
	// NoRetryError is returned when the remote rejected a call outright.
	NoRetryError
	// FatalError is returned when the source tree can't be cloned as it stands.
	FatalError
	// Canceled is returned when the run was interrupted.
	Canceled
)

// FromError returns the exit status for err
func FromError(err error) int {
	switch fserrors.Kind(err) {
	case "":
		return Success
	case "InvalidReference":
		return InvalidReference
	case "NotFound":
		return NotFound
	case "NotAFolder":
		return NotAFolder
	case "RetriesExhausted", "RemoteTransient":
		return RetryError
	case "Forbidden", "RemoteError":
		return NoRetryError
	case "CyclicStructure":
		return FatalError
	case "Canceled":
		return Canceled
	}
	return UncategorizedError
}
