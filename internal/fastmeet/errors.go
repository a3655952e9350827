package fastmeet

import (
	"errors"
	"fmt"
)

// Failure taxonomy returned by the controller and chat channel. All of these
// are recoverable caller errors; the HTTP layer maps them to statuses.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflicting participation")
	ErrAlreadyBlocked = errors.New("user already holds an active meet")
	ErrInvalidState   = errors.New("invalid participation state")
	ErrRateLimited    = errors.New("rate limited")
	ErrMessageEmpty   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message too long")
)

// BlockedError is returned when the single-active-meet rule rejects an
// operation. ConflictingMeetID is zero when the conflicting meet could not be
// identified (lost insert race).
type BlockedError struct {
	ConflictingMeetID int
}

func (e *BlockedError) Error() string {
	if e.ConflictingMeetID == 0 {
		return ErrAlreadyBlocked.Error()
	}
	return fmt.Sprintf("user already active in meet %d", e.ConflictingMeetID)
}

// Is makes errors.Is(err, ErrAlreadyBlocked) hold for BlockedError values.
func (e *BlockedError) Is(target error) bool {
	return target == ErrAlreadyBlocked
}
