package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
)

// ShouldRetry reports whether err is a transient dial or timeout failure
// that is worth another attempt against the Bot API.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		if urlErr.Timeout() {
			return true
		}
		return ShouldRetry(urlErr.Err)
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
