package control

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/lbmenu/internal/ipc"
	"github.com/example/lbmenu/internal/protocol"
)

// RemoteError is an error reported by the launcher.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client talks to a running launcher.
type Client struct {
	Endpoint ipc.Endpoint
	Token    string
}

// Do sends req and decodes the reply. Remote failures are returned as
// *RemoteError.
func (c Client) Do(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	conn, err := c.Endpoint.DialContext(ctx)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("connect to %s: %w", c.Endpoint.String(), err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(connectionTimeout))
	}

	req.Token = c.Token
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return protocol.Response{}, fmt.Errorf("send request: %w", err)
	}

	var resp protocol.Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return protocol.Response{}, fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != "" {
		return resp, &RemoteError{Code: resp.Code, Message: resp.Error}
	}
	return resp, nil
}

// List returns the current actions.
func (c Client) List(ctx context.Context) (protocol.Response, error) {
	return c.Do(ctx, protocol.Request{Command: protocol.CommandMenuList})
}

// Refresh rebuilds the menu and returns the resulting actions.
func (c Client) Refresh(ctx context.Context) (protocol.Response, error) {
	return c.Do(ctx, protocol.Request{Command: protocol.CommandMenuRefresh})
}

// Dispatch launches the action id.
func (c Client) Dispatch(ctx context.Context, id string) error {
	_, err := c.Do(ctx, protocol.Request{Command: protocol.CommandActionDispatch, ActionID: id})
	return err
}
