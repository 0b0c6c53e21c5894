// Package config holds the validated startup settings. Built once, never
// mutated; every validation failure here is fatal before the first tick.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/tastythames/router-keepalive/internal/routerclient"
)

const (
	DefaultBaseURL  = "http://192.168.1.1"
	DefaultUsername = "useradmin"
	// DefaultSchedule is Monday 04:00 local time, the window where nobody
	// notices the gateway blinking.
	DefaultSchedule    = "0 4 * * MON"
	DefaultLoginToken  = "5"
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 5 * time.Second
	DefaultTimeout     = 10 * time.Second

	PasswordEnvVar = "ROUTER_PASSWORD"
)

type Settings struct {
	BaseURL    string
	Username   string
	Password   string
	LoginToken string
	Frashnum   string

	Schedule    string
	MaxRetries  int
	BackoffBase time.Duration
	Timeout     time.Duration

	ProfileName string
	ProfileFile string

	Listen   string // status/metrics listen address, empty disables
	RunNow   bool
	FollowUp bool
	Verbose  bool
}

// Defaults returns settings pre-filled for a Tianyi/ZTE gateway; the password
// comes from ROUTER_PASSWORD unless overridden by flag.
func Defaults() Settings {
	return Settings{
		BaseURL:     DefaultBaseURL,
		Username:    DefaultUsername,
		Password:    os.Getenv(PasswordEnvVar),
		LoginToken:  DefaultLoginToken,
		Schedule:    DefaultSchedule,
		MaxRetries:  DefaultMaxRetries,
		BackoffBase: DefaultBackoffBase,
		Timeout:     DefaultTimeout,
		ProfileName: "zte-tianyi",
	}
}

func (s *Settings) Validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("host: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("host: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host: missing host in %q", s.BaseURL)
	}
	if s.Username == "" {
		return fmt.Errorf("username: is required")
	}
	if s.Password == "" {
		return fmt.Errorf("password: is required (set %s or --password)", PasswordEnvVar)
	}
	if s.Schedule == "" {
		return fmt.Errorf("schedule: is required")
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("max-retries: must be >= 0, got %d", s.MaxRetries)
	}
	if s.BackoffBase <= 0 {
		return fmt.Errorf("backoff-base: must be > 0, got %s", s.BackoffBase)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout: must be > 0, got %s", s.Timeout)
	}
	if s.ProfileFile == "" && s.ProfileName == "" {
		return fmt.Errorf("profile: name or file is required")
	}
	return nil
}

// Credentials builds the immutable login identity. Call Validate first.
func (s *Settings) Credentials() (routerclient.Credentials, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return routerclient.Credentials{}, fmt.Errorf("host: %w", err)
	}
	return routerclient.Credentials{
		BaseURL:    u,
		Username:   s.Username,
		Password:   s.Password,
		LoginToken: s.LoginToken,
		Frashnum:   s.Frashnum,
	}, nil
}
