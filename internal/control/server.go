// Package control lets other processes list, refresh and launch entries of a
// running launcher over a token-authenticated loopback connection.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/example/lbmenu/internal/dispatch"
	"github.com/example/lbmenu/internal/ipc"
	"github.com/example/lbmenu/internal/logging"
	"github.com/example/lbmenu/internal/menu"
	"github.com/example/lbmenu/internal/protocol"
	"github.com/example/lbmenu/internal/security"
)

const connectionTimeout = 30 * time.Second

// Backend is the launcher state the server exposes.
type Backend interface {
	Current() menu.Snapshot
	Refresh() menu.Snapshot
	Dispatch(id string) error
}

// Server answers one JSON request per connection.
type Server struct {
	endpoint ipc.Endpoint
	token    string
	backend  Backend
}

// NewServer constructs a Server. An empty token rejects every request.
func NewServer(endpoint ipc.Endpoint, token string, backend Backend) *Server {
	return &Server{endpoint: endpoint, token: token, backend: backend}
}

// Endpoint exposes the listening endpoint for logging and diagnostics.
func (s *Server) Endpoint() string {
	return s.endpoint.String()
}

// Run listens on the endpoint and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := s.endpoint.Listen()
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.endpoint.String(), err)
	}
	log.Printf("lbmenu control channel listening on %s", s.endpoint.String())
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is canceled. It closes the
// listener on return.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	defer listener.Close()

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				logging.Debugf("control channel shutting down")
				return context.Canceled
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				log.Printf("temporary accept error: %v", err)
				time.Sleep(250 * time.Millisecond)
				continue
			}
			return fmt.Errorf("accept connection: %w", err)
		}

		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(connectionTimeout))
	}

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	var req protocol.Request
	if err := decoder.Decode(&req); err != nil {
		log.Printf("control: failed to decode request: %v", err)
		_ = encoder.Encode(protocol.Response{Error: "malformed request", Code: protocol.CodeBadRequest})
		return
	}
	logging.LogControlRequest(req.Command, req.Token, []byte(req.ActionID))

	resp := s.handle(req)
	logging.LogControlResponse(req.Command, responseStatus(resp), nil)
	if err := encoder.Encode(resp); err != nil {
		log.Printf("control: failed to write response: %v", err)
	}
}

func (s *Server) handle(req protocol.Request) protocol.Response {
	if !security.Equal(req.Token, s.token) {
		return protocol.Response{Error: "unauthorized", Code: protocol.CodeUnauthorized}
	}

	switch req.Command {
	case protocol.CommandMenuList:
		return snapshotResponse(s.backend.Current())
	case protocol.CommandMenuRefresh:
		return snapshotResponse(s.backend.Refresh())
	case protocol.CommandActionDispatch:
		if req.ActionID == "" {
			return protocol.Response{Error: "missing action id", Code: protocol.CodeBadRequest}
		}
		err := s.backend.Dispatch(req.ActionID)
		switch {
		case err == nil:
			return protocol.Response{}
		case errors.Is(err, dispatch.ErrUnknownAction):
			return protocol.Response{Error: err.Error(), Code: protocol.CodeUnknownAction}
		default:
			return protocol.Response{Error: err.Error(), Code: protocol.CodeLaunchFailure}
		}
	default:
		return protocol.Response{Error: fmt.Sprintf("unknown command: %s", req.Command), Code: protocol.CodeUnknownCommand}
	}
}

func snapshotResponse(snap menu.Snapshot) protocol.Response {
	resp := protocol.Response{
		Digest:  snap.Digest,
		Actions: snap.Actions.Actions(),
	}
	if snap.Err != nil {
		resp.SettingsErr = snap.Err.Error()
	}
	return resp
}

func responseStatus(resp protocol.Response) string {
	if resp.Code != "" {
		return resp.Code
	}
	return "ok"
}
