// Package helper implements the privileged helper client protocol (spec
// §6): a length-prefixed JSON request/response exchange over a local
// net.Conn, used by the Action Executor's single permission-error retry
// path. No direct teacher analogue exists (xtop never talks to a
// privileged helper); grounded on the teacher's engine/recorder.go
// encode/decode-one-frame-at-a-time style, generalized to a length-prefixed
// wire format since a shared channel needs explicit framing a plain
// JSON-lines log doesn't.
package helper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/ftahirops/swiftsweep/internal/model"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// maxFrameBytes bounds a single frame to guard against a misbehaving helper
// claiming an enormous length prefix.
const maxFrameBytes = 1 << 20 // 1 MiB

// DeleteRequest asks the helper to act on exactly one canonical path.
type DeleteRequest struct {
	RequestID     string              `json:"request_id"`
	CanonicalPath string              `json:"canonical_path"`
	Mode          model.ExecutionMode `json:"mode"`
}

// DeleteResponse is the helper's reply. Any Status other than "ok" is
// treated as a per-item failure by the client — the helper's own allowlist
// re-validation failing shows up here, not as a transport error.
type DeleteResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// StatusOK is the only DeleteResponse.Status value the client accepts as
// success.
const StatusOK = "ok"

// Dialer opens a connection to the privileged helper's local socket.
type Dialer func(ctx context.Context) (net.Conn, error)

// Client sends delete requests to the privileged helper, one at a time,
// wrapped in a circuit breaker so a helper that is down or wedged fails
// fast instead of stalling every subsequent executor retry.
type Client struct {
	dial    Dialer
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// New creates a Client. timeout bounds each individual helper call
// (independent of the caller's own scheduler timeout, per spec §5).
func New(dial Dialer, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "swiftsweep-helper",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Client{dial: dial, timeout: timeout, breaker: breaker}
}

// DeleteOne asks the helper to act on one canonical path, through the
// circuit breaker.
func (c *Client) DeleteOne(ctx context.Context, canonicalPath string, mode model.ExecutionMode) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.deleteOnce(ctx, canonicalPath, mode)
	})
	return err
}

func (c *Client) deleteOnce(ctx context.Context, canonicalPath string, mode model.ExecutionMode) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dial(callCtx)
	if err != nil {
		return fmt.Errorf("dial helper: %w", err)
	}
	defer conn.Close()

	if deadline, ok := callCtx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	req := DeleteRequest{RequestID: uuid.NewString(), CanonicalPath: canonicalPath, Mode: mode}
	if err := writeFrame(conn, req); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	var resp DeleteResponse
	if err := readFrame(conn, &resp); err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.Status != StatusOK {
		if resp.Error != "" {
			return fmt.Errorf("helper rejected path: %s", resp.Error)
		}
		return fmt.Errorf("helper rejected path: status=%s", resp.Status)
	}
	return nil
}

func writeFrame(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func readFrame(r io.Reader, v interface{}) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > maxFrameBytes {
		return fmt.Errorf("frame too large: %d bytes", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	return json.Unmarshal(buf, v)
}
