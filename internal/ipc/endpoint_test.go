package ipc

import (
	"context"
	"testing"
	"time"
)

func TestNewDefaultsToTCP(t *testing.T) {
	e := New("  127.0.0.1:47864 ")
	if e.Network != "tcp" || e.Address != "127.0.0.1:47864" {
		t.Fatalf("unexpected endpoint: %+v", e)
	}
	if got := (Endpoint{Address: "127.0.0.1:1"}).String(); got != "tcp://127.0.0.1:1" {
		t.Fatalf("unexpected string form %q", got)
	}
}

func TestListenAndDial(t *testing.T) {
	listener, err := New("127.0.0.1:0").Listen()
	if err != nil {
		t.Fatalf("Listen returned error: %v", err)
	}
	defer listener.Close()

	accepted := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			conn.Close()
		}
		accepted <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := New(listener.Addr().String()).DialContext(ctx)
	if err != nil {
		t.Fatalf("DialContext returned error: %v", err)
	}
	conn.Close()

	if err := <-accepted; err != nil {
		t.Fatalf("Accept returned error: %v", err)
	}
}
