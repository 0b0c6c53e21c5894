package routerclient

import "fmt"

// Kind classifies the result of one login attempt.
type Kind int

const (
	KindSuccess Kind = iota
	KindAuthRejected
	KindTransient
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindAuthRejected:
		return "auth_rejected"
	case KindTransient:
		return "transient_error"
	case KindUnexpected:
		return "unexpected_response"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of exactly one attempt. Exactly one constructor
// populates it; Reason carries the device-side detail, Err the network cause.
type Outcome struct {
	Kind   Kind
	Reason string
	Err    error
}

func Success() Outcome { return Outcome{Kind: KindSuccess} }

func AuthRejected(reason string) Outcome {
	return Outcome{Kind: KindAuthRejected, Reason: reason}
}

func Transient(err error) Outcome {
	return Outcome{Kind: KindTransient, Err: err}
}

func Unexpected(detail string) Outcome {
	return Outcome{Kind: KindUnexpected, Reason: detail}
}

// Retryable reports whether retrying the attempt could help. Only network
// failures qualify; a rejected credential stays rejected.
func (o Outcome) Retryable() bool { return o.Kind == KindTransient }

func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s: %v", o.Kind, o.Err)
	case o.Reason != "":
		return fmt.Sprintf("%s: %s", o.Kind, o.Reason)
	default:
		return o.Kind.String()
	}
}
