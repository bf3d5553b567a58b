package service

import (
	"errors"

	"github.com/javiermolinar/quorum/internal/poll"
)

func participantMissing(err error) bool {
	return errors.Is(err, poll.ErrParticipantNotFound)
}

// IsNotFound reports whether err means a referenced event, participant or
// meeting does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, poll.ErrEventNotFound) ||
		errors.Is(err, poll.ErrParticipantNotFound) ||
		errors.Is(err, poll.ErrNotScheduled)
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	var verr *poll.ValidationError
	return errors.As(err, &verr)
}
