// Package client asks a remote cmdgate server for decisions. It fails
// closed: when the server cannot be reached the command is denied.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/ppiankov/cmdgate/api/proto/cmdgate/v1"
	"github.com/ppiankov/cmdgate/internal/gate"
	"github.com/ppiankov/cmdgate/internal/mode"
)

// DefaultTimeout bounds each call when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// Client connects to a cmdgate gRPC server.
type Client struct {
	conn   *grpc.ClientConn
	client pb.GateServiceClient
}

// New creates a gRPC client for addr. The connection is established lazily,
// so an unreachable server surfaces as a denial from Check.
func New(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to gate server: %w", err)
	}
	return &Client{
		conn:   conn,
		client: pb.NewGateServiceClient(conn),
	}, nil
}

// Check sends command to the remote gate.
// Fail-closed: returns a denial on any RPC error.
func (c *Client) Check(ctx context.Context, command string) gate.Decision {
	return c.CheckRequest(ctx, "", command)
}

// CheckRequest is Check with a caller-supplied request ID.
func (c *Client) CheckRequest(ctx context.Context, requestID, command string) gate.Decision {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	req := pb.CheckRequest{Command: command, RequestID: requestID}
	out, err := c.client.Check(ctx, req.Struct())
	if err != nil {
		return gate.Decision{
			RequestID: requestID,
			Command:   command,
			Stage:     gate.StageUnavailable,
			Reason:    fmt.Sprintf("gate server unreachable: %v", err),
		}
	}

	resp := pb.CheckResponseFromStruct(out)
	m := mode.ParseName(resp.Mode)
	d := gate.Decision{
		RequestID: resp.RequestID,
		Allowed:   resp.Allowed,
		Command:   command,
		Name:      resp.Name,
		Mode:      m,
		Stage:     gate.Stage(resp.Stage),
		Validator: resp.Validator,
		Reason:    resp.Reason,
	}
	if !d.Allowed && d.Reason == "" {
		d.Reason = "denied by gate server"
	}
	return d
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
