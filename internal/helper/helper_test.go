package helper

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
)

// fakeHelperServer handles exactly one frame on the server end of a
// net.Pipe, replying with the given status.
func fakeHelperServer(t *testing.T, server net.Conn, status string) {
	t.Helper()
	var req DeleteRequest
	if err := readFrame(server, &req); err != nil {
		t.Errorf("server failed to read request: %v", err)
		return
	}
	resp := DeleteResponse{RequestID: req.RequestID, Status: status}
	if status != StatusOK {
		resp.Error = "path not in helper allowlist"
	}
	if err := writeFrame(server, resp); err != nil {
		t.Errorf("server failed to write response: %v", err)
	}
}

func dialerFor(server, client net.Conn) Dialer {
	used := false
	return func(ctx context.Context) (net.Conn, error) {
		if used {
			return nil, context.Canceled
		}
		used = true
		return client, nil
	}
}

func TestClient_DeleteOne_Success(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	go fakeHelperServer(t, server, StatusOK)

	c := New(dialerFor(server, client), time.Second)
	err := c.DeleteOne(context.Background(), "/Library/Caches/org.vendor.app/blob", model.ModeDelete)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestClient_DeleteOne_RejectionSurfacesAsError(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	go fakeHelperServer(t, server, "rejected")

	c := New(dialerFor(server, client), time.Second)
	err := c.DeleteOne(context.Background(), "/Library/Caches/org.vendor.app/blob", model.ModeDelete)
	if err == nil {
		t.Fatal("expected an error for a non-ok helper response")
	}
}

func TestClient_DeleteOne_DialFailureReturnsError(t *testing.T) {
	c := New(func(ctx context.Context) (net.Conn, error) {
		return nil, context.DeadlineExceeded
	}, time.Second)
	err := c.DeleteOne(context.Background(), "/Library/Caches/x", model.ModeTrash)
	if err == nil {
		t.Fatal("expected dial failure to surface as an error")
	}
}
