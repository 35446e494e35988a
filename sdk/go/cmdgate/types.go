package cmdgate

import (
	"fmt"

	"github.com/ppiankov/cmdgate/internal/gate"
)

// Mode is the gate operating mode.
type Mode string

const (
	Normal Mode = "normal"
	Strict Mode = "strict"
)

// Stage names the step that produced a decision.
type Stage string

const (
	StageClassify  Stage = Stage(gate.StageClassify)
	StageValidator Stage = Stage(gate.StageValidator)
	StageDefault   Stage = Stage(gate.StageDefault)
)

// Result is the gate's verdict on one command line.
type Result struct {
	Allowed   bool
	Reason    string
	Stage     Stage
	Mode      Mode
	Name      string
	Validator string
	RequestID string
}

// Output is the outcome of a command run through the gate.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Redacted int
	Result   Result
}

// BlockedError is returned when the gate denies a command.
type BlockedError struct {
	Command string
	Result  Result
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("cmdgate blocked (%s): %s", e.Result.Stage, e.Result.Reason)
}

func toResult(d gate.Decision) Result {
	return Result{
		Allowed:   d.Allowed,
		Reason:    d.Reason,
		Stage:     Stage(d.Stage),
		Mode:      Mode(d.Mode.String()),
		Name:      d.Name,
		Validator: d.Validator,
		RequestID: d.RequestID,
	}
}
