package routerclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

const (
	maxRedirects  = 4
	maxBodyBytes  = 1 << 20 // router pages are tiny; anything bigger is suspect
	defaultHTTPTO = 10 * time.Second
)

// Credentials identifies one router login. Immutable after construction;
// never log Password.
type Credentials struct {
	BaseURL    *url.URL
	Username   string
	Password   string
	LoginToken string
	Frashnum   string
}

// Device is the firmware-specific half of the client: it knows how to encode
// a login request and how to read the device's answer. New firmware variants
// implement this without touching the scheduler or retry logic.
type Device interface {
	Name() string
	LoginRequest(ctx context.Context, creds Credentials) (*http.Request, error)
	Interpret(status int, header http.Header, body []byte) Outcome
	// FollowUpRequest returns the optional post-login action, or nil when
	// the profile has none.
	FollowUpRequest(ctx context.Context, creds Credentials) (*http.Request, error)
}

// Client performs one login attempt per Attempt call against a single
// device. It owns its http.Client (cookie jar, redirect cap, timeout); there
// is no process-wide shared client.
type Client struct {
	http   *http.Client
	device Device
}

type Options struct {
	Device  Device
	Timeout time.Duration // per-attempt bound; defaults to 10s
}

func New(opts Options) (*Client, error) {
	if opts.Device == nil {
		return nil, fmt.Errorf("routerclient: device profile is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTO
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	return &Client{
		device: opts.Device,
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}, nil
}

// Attempt sends exactly one login request and maps the answer to an Outcome.
// No internal retries; that is the retry policy's job. The call is bounded by
// the client timeout even if ctx has no deadline.
func (c *Client) Attempt(ctx context.Context, creds Credentials) Outcome {
	req, err := c.device.LoginRequest(ctx, creds)
	if err != nil {
		return Unexpected(fmt.Sprintf("build login request: %v", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// transport-level failures (timeout, refused, DNS) are the
		// retryable class
		return Transient(fmt.Errorf("login request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Transient(fmt.Errorf("read login response: %w", err))
	}

	log.Debug("login response",
		"device", c.device.Name(),
		"status", resp.StatusCode,
	)
	if creds.BaseURL != nil && len(c.http.Jar.Cookies(creds.BaseURL)) == 0 {
		log.Debug("no session cookie after login; device may not need one")
	}

	return c.device.Interpret(resp.StatusCode, resp.Header, body)
}

// FollowUp runs the profile's post-login action, if any. Returns whether an
// action was dispatched. Callers must only invoke this after a Success
// outcome; failures here never change the tick's outcome and are never
// retried.
func (c *Client) FollowUp(ctx context.Context, creds Credentials) (bool, error) {
	req, err := c.device.FollowUpRequest(ctx, creds)
	if err != nil {
		return false, fmt.Errorf("build follow-up request: %w", err)
	}
	if req == nil {
		return false, nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return true, fmt.Errorf("follow-up request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return true, fmt.Errorf("follow-up returned status %d", resp.StatusCode)
	}
	return true, nil
}
