package gate

import (
	"fmt"

	"github.com/ppiankov/cmdgate/internal/mode"
)

// Stage names the step of the pipeline that produced a decision.
type Stage string

const (
	// StageClassify means the command name was rejected by the tier table
	// (or the line could not be parsed).
	StageClassify Stage = "classify"
	// StageValidator means a validator ran and its result is the decision.
	StageValidator Stage = "validator"
	// StageDefault means no validator applies and the command is allowed.
	StageDefault Stage = "default"
	// StageUnavailable means a remote gate could not be reached and the
	// command was denied without a verdict.
	StageUnavailable Stage = "unavailable"
)

// Decision is the gate's verdict on one command line.
type Decision struct {
	RequestID string    `json:"request_id"`
	Allowed   bool      `json:"allowed"`
	Command   string    `json:"command"`
	Name      string    `json:"name,omitempty"`
	Mode      mode.Mode `json:"mode"`
	Stage     Stage     `json:"stage"`
	Validator string    `json:"validator,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// BlockedError is returned by Run when the gate denies a command.
type BlockedError struct {
	Decision Decision
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("command blocked (%s): %s", e.Decision.Stage, e.Decision.Reason)
}
