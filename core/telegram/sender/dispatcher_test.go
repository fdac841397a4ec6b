package sender

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "send.text", func() error {
		if calls.Add(1) < 3 {
			return &net.OpError{Op: "dial", Err: errors.New("refused")}
		}
		return nil
	}))
	d.Close()

	assert.EqualValues(t, 3, calls.Load())
	assert.Zero(t, d.Failed())
}

func TestDispatcherDoesNotRetryPermanentErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "send.photo", func() error {
		calls.Add(1)
		return errors.New("telegram: bad request (400)")
	}))
	d.Close()

	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 1, d.Failed())
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	d.Close()
	err := d.Enqueue(context.Background(), "send.text", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, d.Enqueue(context.Background(), "block", func() error {
		close(started)
		<-release
		return nil
	}))
	<-started
	require.NoError(t, d.Enqueue(context.Background(), "queued", func() error { return nil }))
	assert.ErrorIs(t, d.Enqueue(context.Background(), "overflow", func() error { return nil }), ErrQueueFull)
	close(release)
	d.Close()
}

func TestRedactAndClassify(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123:AAH-x_y/sendMessage": EOF`)
	assert.Equal(t, `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF`, redact(err))

	assert.Equal(t, "timeout", classify(context.DeadlineExceeded))
	assert.Equal(t, "http_4xx", classify(&tele.Error{Code: 400, Description: "Bad Request"}))
	assert.Equal(t, "http_5xx", classify(&tele.Error{Code: 502}))
	assert.Equal(t, "network", classify(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.Equal(t, "unknown", classify(errors.New("boom")))
}
