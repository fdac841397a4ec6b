package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	for name, tc := range map[string]struct {
		err  error
		want bool
	}{
		"nil":            {nil, false},
		"plain":          {errors.New("bad request"), false},
		"canceled":       {context.Canceled, false},
		"dial":           {dial, true},
		"timeout":        {timeoutErr{}, true},
		"url wraps dial": {&url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dial}, true},
		"url wraps 4xx":  {&url.Error{Op: "Post", URL: "https://api.telegram.org", Err: errors.New("400")}, false},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldRetry(tc.err))
		})
	}
}
