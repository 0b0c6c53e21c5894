package profile

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tastythames/router-keepalive/internal/routerclient"
)

// Router web UIs sulk at non-browser clients, so every request carries a
// browser-looking header set.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
	"Connection":      "keep-alive",
}

func (s *Spec) Name() string { return s.ProfileName }

// LoginRequest encodes one login attempt from the profile's form template.
func (s *Spec) LoginRequest(ctx context.Context, creds routerclient.Credentials) (*http.Request, error) {
	if creds.BaseURL == nil {
		return nil, fmt.Errorf("credentials have no base URL")
	}
	loginURL, err := joinURL(creds.BaseURL, s.Login.Path)
	if err != nil {
		return nil, err
	}

	fill := strings.NewReplacer(
		"{username}", creds.Username,
		"{password}", creds.Password,
		"{token}", creds.LoginToken,
		"{frashnum}", creds.Frashnum,
	)
	form := url.Values{}
	for k, v := range s.Login.Form {
		form.Set(k, fill.Replace(v))
	}

	var req *http.Request
	if s.Login.Method == "GET" {
		u := *loginURL
		u.RawQuery = form.Encode()
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, loginURL.String(),
			strings.NewReader(form.Encode()))
	}
	if err != nil {
		return nil, err
	}

	s.applyHeaders(req)
	if s.Login.Method == "POST" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Origin", originOf(creds.BaseURL))
	req.Header.Set("Referer", loginURL.String())
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	return req, nil
}

// Interpret maps a login response to an outcome. Rejection markers win over
// success markers; a page that names a login error is a rejection no matter
// its status code.
func (s *Spec) Interpret(status int, _ http.Header, body []byte) routerclient.Outcome {
	if ok, marker := s.Rejected.match(status, body); ok {
		reason := "rejection marker matched"
		if marker != "" {
			reason = fmt.Sprintf("response contains %q", marker)
		}
		return routerclient.AuthRejected(reason)
	}
	if ok, _ := s.Success.match(status, body); ok {
		return routerclient.Success()
	}
	return routerclient.Unexpected(fmt.Sprintf("status %d, body %q",
		status, routerclient.BodySnippet(body, 120)))
}

// FollowUpRequest encodes the profile's post-login action, or returns nil
// when the profile has none.
func (s *Spec) FollowUpRequest(ctx context.Context, creds routerclient.Credentials) (*http.Request, error) {
	if s.FollowUp == nil {
		return nil, nil
	}
	if creds.BaseURL == nil {
		return nil, fmt.Errorf("credentials have no base URL")
	}

	actionURL, err := joinURL(creds.BaseURL, s.FollowUp.Path)
	if err != nil {
		return nil, err
	}
	u := *actionURL
	if s.FollowUp.TimestampParam != "" {
		q := u.Query()
		q.Set(s.FollowUp.TimestampParam, strconv.FormatInt(time.Now().UnixMilli(), 10))
		u.RawQuery = q.Encode()
	}

	form := url.Values{}
	form.Set("jsonCfg", s.FollowUp.Payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	s.applyHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Origin", originOf(creds.BaseURL))
	if s.FollowUp.Referer != "" {
		ref, err := joinURL(creds.BaseURL, s.FollowUp.Referer)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Referer", ref.String())
	}
	return req, nil
}

func (s *Spec) applyHeaders(req *http.Request) {
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
}

// joinURL resolves path against base, accepting absolute URLs as-is.
func joinURL(base *url.URL, path string) (*url.URL, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		u, err := url.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("invalid absolute url %q: %w", path, err)
		}
		return u, nil
	}
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	return base.ResolveReference(ref), nil
}

func originOf(u *url.URL) string {
	o := url.URL{Scheme: u.Scheme, Host: u.Host}
	return o.String()
}
