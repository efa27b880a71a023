package indexfilter

import "errors"

// ErrAccessDenied is returned when an index expression is blocked by the
// configured policy. It is the only error this package surfaces to
// callers; configuration and pattern problems degrade to non-matches.
var ErrAccessDenied = errors.New("index access denied")

// DeniedError carries the evaluator's reason for a blocked expression.
// It unwraps to ErrAccessDenied.
type DeniedError struct {
	// Reason names the offending pattern and the index segment that
	// failed, exactly as produced by Policy.Evaluate.
	Reason string
}

func (e *DeniedError) Error() string {
	return "Index access denied: " + e.Reason
}

func (e *DeniedError) Unwrap() error {
	return ErrAccessDenied
}

// Validate is the single gate privileged operations call before issuing a
// remote request. It checks the index expression against the process-wide
// policy and returns a *DeniedError on denial; an empty expression passes
// without consulting the policy.
func Validate(index string) error {
	if index == "" {
		return nil
	}
	if d := Current().CheckAccess(index); !d.Allowed {
		return &DeniedError{Reason: d.Reason}
	}
	return nil
}
