package ipc

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

const defaultNetwork = "tcp"

// Endpoint describes where a running launcher accepts control requests.
type Endpoint struct {
	Network string
	Address string
}

// New returns a TCP endpoint for addr.
func New(addr string) Endpoint {
	return Endpoint{Network: defaultNetwork, Address: strings.TrimSpace(addr)}
}

// Listen binds to the configured endpoint.
func (e Endpoint) Listen() (net.Listener, error) {
	return net.Listen(e.network(), e.Address)
}

// DialContext establishes a client connection with sensible timeouts.
func (e Endpoint) DialContext(ctx context.Context) (net.Conn, error) {
	d := &net.Dialer{Timeout: 5 * time.Second}
	return d.DialContext(ctx, e.network(), e.Address)
}

// String provides a readable representation for logs.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s://%s", e.network(), e.Address)
}

func (e Endpoint) network() string {
	if e.Network == "" {
		return defaultNetwork
	}
	return e.Network
}
