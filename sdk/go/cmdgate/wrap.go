package cmdgate

import (
	"context"
)

// ToolFunc is the function signature that Wrap guards: an agent tool that
// runs a shell command line.
type ToolFunc func(ctx context.Context, command string) (any, error)

// Wrap returns a ToolFunc that checks command before calling fn.
// If the gate denies it, returns a *BlockedError without calling fn.
func (c *Client) Wrap(fn ToolFunc) ToolFunc {
	return func(ctx context.Context, command string) (any, error) {
		res := c.Check(ctx, command)
		if !res.Allowed {
			return nil, &BlockedError{Command: command, Result: res}
		}
		return fn(ctx, command)
	}
}
