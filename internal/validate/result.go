// Package validate defines the validator contract and the registry that
// dispatches a command name to its validator for the current mode.
package validate

// Result is the outcome of validating one command string.
// Reason is empty exactly when OK is true.
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// Allow returns an accepting result.
func Allow() Result {
	return Result{OK: true}
}

// Reject returns a rejecting result. An empty reason is replaced so that a
// rejection always carries an explanation.
func Reject(reason string) Result {
	if reason == "" {
		reason = "rejected by validator"
	}
	return Result{OK: false, Reason: reason}
}

// Validator accepts or rejects a full raw command string.
// Implementations must be pure and safe for concurrent use.
type Validator interface {
	Validate(command string) Result
}

// Func adapts a plain function to Validator.
type Func func(command string) Result

// Validate implements Validator.
func (f Func) Validate(command string) Result {
	return f(command)
}
