// Package popup drives the browser popup used for OAuth account linking:
// open a child window at the authorization endpoint, then settle exactly once
// on whichever comes first of a callback message, the user closing the
// window, or an absolute timeout.
package popup

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBlocked means the window never opened; the browser's popup
	// blocker is the usual cause and the user has to allow popups.
	ErrBlocked = errors.New("popup blocked")

	// ErrTimeout means nothing settled the flow within the absolute
	// timeout; the window is force-closed before this is returned.
	ErrTimeout = errors.New("oauth timeout")
)

const (
	MessageOAuthSuccess = "oauth_success"
	MessageOAuthError   = "oauth_error"
)

// Message is a cross-window notification from the OAuth callback page. Any
// shape other than the two known types is ignored, so unrelated postMessage
// traffic cannot settle the flow.
type Message struct {
	Type     string `json:"type"`
	Platform string `json:"platform,omitempty"`
	Error    string `json:"error,omitempty"`
}

// AuthError carries the error reason reported by the callback page.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "oauth failed"
	}
	return "oauth failed: " + e.Reason
}

// Window is the handle to the child browser window.
type Window interface {
	Closed() bool
	Close()
}

// OpenFunc opens a popup at the given URL. A nil Window means the popup was
// blocked.
type OpenFunc func(url string) Window

type Controller struct {
	open     OpenFunc
	messages <-chan Message

	pollInterval time.Duration
	graceDelay   time.Duration
	timeout      time.Duration
}

func NewController(open OpenFunc, messages <-chan Message) *Controller {
	return &Controller{
		open:         open,
		messages:     messages,
		pollInterval: 500 * time.Millisecond,
		graceDelay:   500 * time.Millisecond,
		timeout:      5 * time.Minute,
	}
}

// Connect runs the authorization dance for one platform and settles exactly
// once. The three event sources race: a recognized message wins immediately;
// a closed window wins after a short grace delay that lets a just-completed
// callback's message arrive first; the timeout force-closes the window. The
// single select loop below is what guarantees at most one settlement, and
// every timer and ticker is torn down on return.
func (c *Controller) Connect(ctx context.Context, platform string) error {
	win := c.open("/auth/" + platform)
	if win == nil {
		return ErrBlocked
	}

	poll := time.NewTicker(c.pollInterval)
	defer poll.Stop()

	timeout := time.NewTimer(c.timeout)
	defer timeout.Stop()

	for {
		select {
		case msg := <-c.messages:
			if handled, err := settle(msg); handled {
				return err
			}

		case <-poll.C:
			if !win.Closed() {
				continue
			}
			return c.afterClose(ctx, timeout)

		case <-timeout.C:
			if !win.Closed() {
				win.Close()
			}
			return ErrTimeout

		case <-ctx.Done():
			if !win.Closed() {
				win.Close()
			}
			return ctx.Err()
		}
	}
}

// afterClose handles the window-closed fallback: wait out the grace delay,
// still accepting a late callback message, then report implicit success.
// This is best-effort; closing the popup before the callback finished is
// indistinguishable from a completed flow here.
func (c *Controller) afterClose(ctx context.Context, timeout *time.Timer) error {
	grace := time.NewTimer(c.graceDelay)
	defer grace.Stop()

	for {
		select {
		case msg := <-c.messages:
			if handled, err := settle(msg); handled {
				return err
			}

		case <-grace.C:
			return nil

		case <-timeout.C:
			return ErrTimeout

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func settle(msg Message) (bool, error) {
	switch msg.Type {
	case MessageOAuthSuccess:
		return true, nil
	case MessageOAuthError:
		return true, &AuthError{Reason: msg.Error}
	}
	return false, nil
}
