package telegram

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/cinebot/core/telegram/netutil"
)

const (
	dialTimeout       = 5 * time.Second
	keepAliveInterval = 30 * time.Second
	tlsHandshake      = 5 * time.Second
	idleConnTimeout   = 30 * time.Second
	responseTimeout   = 5 * time.Second
	clientTimeout     = 30 * time.Second

	retryAttempts = 3
	retryBackoff  = 2 * time.Second
)

// BuildHTTPClient returns an HTTP client for Bot API calls that retries
// transient network failures.
func BuildHTTPClient() *http.Client {
	return &http.Client{
		Timeout: clientTimeout,
		Transport: &retryTransport{
			base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAliveInterval}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       idleConnTimeout,
				TLSHandshakeTimeout:   tlsHandshake,
				ResponseHeaderTimeout: responseTimeout,
				ExpectContinueTimeout: time.Second,
			},
			retries: retryAttempts,
			backoff: retryBackoff,
		},
	}
}

var errNotRewindable = errors.New("telegram: request body cannot be replayed")

type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	for attempt := 1; ; attempt++ {
		resp, err := base.RoundTrip(req)
		if err == nil || attempt > t.retries || !netutil.ShouldRetry(err) {
			return resp, err
		}
		if req, err = rewind(req); err != nil {
			return nil, err
		}
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(t.backoff * time.Duration(attempt)):
		}
	}
}

// rewind clones req with a fresh body so it can be sent again.
func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errNotRewindable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}
