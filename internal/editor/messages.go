package editor

import (
	"context"
	"errors"
	"net"

	"github.com/sidereusnuntius/donata/internal/client"
)

// Message converts a fetch or update failure into the text shown to the user.
func Message(err error) string {
	var rejected *client.RejectedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rejected):
		return "The profile was not saved: " + rejected.Message + "."
	case errors.Is(err, client.ErrNotFound):
		return "No profile was found for this wallet."
	case errors.Is(err, context.DeadlineExceeded), timedOut(err):
		return "The donation service took too long to answer. Try again."
	case errors.Is(err, client.ErrTransport):
		return "The donation service could not be reached. Try again."
	case errors.Is(err, client.ErrDecode):
		return "The donation service sent an unexpected answer."
	default:
		return "Something went wrong. Try again."
	}
}

func timedOut(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
