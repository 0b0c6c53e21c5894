// Package profile describes router firmware variants as data: how to encode
// a login request and which response markers mean success or rejection. A new
// firmware is a YAML file, not a code change.
package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tastythames/router-keepalive/internal/routerclient"
)

// Spec is one firmware profile. It implements routerclient.Device.
type Spec struct {
	ProfileName string            `yaml:"name"`
	Login       LoginSpec         `yaml:"login"`
	Headers     map[string]string `yaml:"headers"`
	Success     MatchSpec         `yaml:"success"`
	Rejected    MatchSpec         `yaml:"rejected"`
	FollowUp    *ActionSpec       `yaml:"follow_up"`
}

type LoginSpec struct {
	Path   string `yaml:"path"`
	Method string `yaml:"method"`
	// Form values may contain {username}, {password}, {token} and
	// {frashnum} placeholders, filled from the credentials at send time.
	Form map[string]string `yaml:"form"`
}

// MatchSpec matches a response when all present criteria hold. A spec with
// no criteria matches nothing.
type MatchSpec struct {
	Status  []int    `yaml:"status"`
	BodyAny []string `yaml:"body_any"`
}

// ActionSpec is an optional post-login request. Only the "reboot" kind is
// supported; the vocabulary is closed on purpose.
type ActionSpec struct {
	Kind           string `yaml:"kind"`
	Path           string `yaml:"path"`
	Referer        string `yaml:"referer"`
	Payload        string `yaml:"payload"`
	TimestampParam string `yaml:"timestamp_param"`
}

func (m MatchSpec) empty() bool {
	return len(m.Status) == 0 && len(m.BodyAny) == 0
}

// match returns whether the response satisfies the spec, and the body marker
// that decided it (empty when status alone decided).
func (m MatchSpec) match(status int, body []byte) (bool, string) {
	if m.empty() {
		return false, ""
	}
	if len(m.Status) > 0 && !routerclient.StatusIn(status, m.Status) {
		return false, ""
	}
	if len(m.BodyAny) > 0 {
		for _, marker := range m.BodyAny {
			if routerclient.BodyContainsAny(body, []string{marker}) {
				return true, marker
			}
		}
		return false, ""
	}
	return true, ""
}

// Load reads a profile from a YAML file and applies defaults.
func Load(path string) (*Spec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var s Spec
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Builtin returns a compiled-in profile by name.
func Builtin(name string) (*Spec, error) {
	switch name {
	case "zte-tianyi", "":
		return zteTianyi(), nil
	default:
		return nil, fmt.Errorf("unknown builtin profile %q", name)
	}
}

func (s *Spec) normalize() error {
	if s.ProfileName == "" {
		return fmt.Errorf("profile: name is required")
	}
	if s.Login.Path == "" {
		s.Login.Path = "/"
	}
	if s.Login.Method == "" {
		s.Login.Method = "POST"
	}
	s.Login.Method = strings.ToUpper(s.Login.Method)
	if s.Login.Method != "POST" && s.Login.Method != "GET" {
		return fmt.Errorf("profile %s: login.method %q not supported", s.ProfileName, s.Login.Method)
	}
	if s.Success.empty() {
		return fmt.Errorf("profile %s: success needs at least one status or body marker", s.ProfileName)
	}
	if s.FollowUp != nil {
		if s.FollowUp.Kind != "reboot" {
			return fmt.Errorf("profile %s: follow_up.kind %q not supported", s.ProfileName, s.FollowUp.Kind)
		}
		if s.FollowUp.Path == "" {
			return fmt.Errorf("profile %s: follow_up.path is required", s.ProfileName)
		}
		if s.FollowUp.Payload == "" {
			s.FollowUp.Payload = rebootPayload
		}
	}
	return nil
}

// rebootPayload is the ZTE web UI's command envelope, sent verbatim as the
// jsonCfg form field.
const rebootPayload = `{"RPCMethod":"Post","Parameter":{"CmdType":"HG_COMMAND_REBOOT"}}`

// zteTianyi is the handshake for Tianyi-branded ZTE gateways: a plain form
// POST to the UI root, errors reported as markers inside a 200 page.
func zteTianyi() *Spec {
	return &Spec{
		ProfileName: "zte-tianyi",
		Login: LoginSpec{
			Path:   "/",
			Method: "POST",
			Form: map[string]string{
				"frashnum":       "{frashnum}",
				"action":         "login",
				"Frm_Logintoken": "{token}",
				"user_name":      "{username}",
				"Password":       "{password}",
			},
		},
		Success: MatchSpec{Status: []int{200}},
		Rejected: MatchSpec{
			BodyAny: []string{
				"Frm_Loginerrtimes",
				"IF_ERRORSTR",
				"Username or Password error",
			},
		},
		FollowUp: &ActionSpec{
			Kind:           "reboot",
			Path:           "/common_page/gatewayManage.lua",
			Referer:        "/common_page/main.lp",
			Payload:        rebootPayload,
			TimestampParam: "timeStamp",
		},
	}
}
