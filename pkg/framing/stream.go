// Package framing implements BufferedStream, the fixed-size read layer
// that sits between a raw transport and pkg/template's message codec.
package framing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrTimeout is returned by Read when the deadline passes with fewer
// than the requested bytes buffered.
var ErrTimeout = errors.New("framing: timeout waiting for bytes")

// DefaultTimeout is the stream default New uses when it is given a
// non-positive defaultTimeout (spec.md §5).
const DefaultTimeout = 10 * time.Second

// Transport is the minimal blocking-receive contract BufferedStream
// consumes. A single call returns whatever bytes are currently
// available (at least 1) or fails with a timeout once the deadline
// implied by timeout has elapsed.
type Transport interface {
	Receive(timeout time.Duration) ([]byte, error)
}

// ParseTimeout resolves a timeout spec string into a duration and a
// "no deadline" flag, per spec.md §5:
//   - "" (or unset) falls back to def.
//   - "blocking" (case-insensitive) disables the deadline entirely.
//   - any other string is parsed as a number of seconds.
func ParseTimeout(spec string, def time.Duration) (d time.Duration, blocking bool, err error) {
	if spec == "" {
		return def, false, nil
	}
	if strings.EqualFold(spec, "blocking") {
		return 0, true, nil
	}
	secs, err := strconv.ParseFloat(spec, 64)
	if err != nil {
		return 0, false, fmt.Errorf("framing: invalid timeout %q: %w", spec, err)
	}
	return time.Duration(secs * float64(time.Second)), false, nil
}

// BufferedStream accumulates bytes pulled from a Transport and yields
// them in exact-size chunks, re-filling from the transport as needed
// until either enough bytes have arrived or a wall-clock deadline
// passes (spec.md §4.7).
type BufferedStream struct {
	transport Transport
	buf       []byte
	def       time.Duration
}

// New wraps transport with a BufferedStream using defaultTimeout as the
// fallback when Read is called with an empty timeout spec.
func New(transport Transport, defaultTimeout time.Duration) *BufferedStream {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	return &BufferedStream{transport: transport, def: defaultTimeout}
}

// Read returns exactly n bytes, blocking on the underlying transport as
// needed, or fails with ErrTimeout. Partial reads are never returned:
// on timeout the accumulated buffer is left intact for a later Read or
// an explicit Empty.
func (b *BufferedStream) Read(n int, timeoutSpec string) ([]byte, error) {
	timeout, blocking, err := ParseTimeout(timeoutSpec, b.def)
	if err != nil {
		return nil, err
	}

	var deadline time.Time
	if !blocking {
		deadline = time.Now().Add(timeout)
	}

	for len(b.buf) < n {
		var remaining time.Duration
		if !blocking {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return nil, ErrTimeout
			}
		}
		chunk, err := b.transport.Receive(remaining)
		if err != nil {
			var te interface{ Timeout() bool }
			if errors.As(err, &te) && te.Timeout() {
				return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
			}
			return nil, fmt.Errorf("framing: receive: %w", err)
		}
		b.buf = append(b.buf, chunk...)
	}

	out := append([]byte(nil), b.buf[:n]...)
	b.buf = b.buf[n:]
	return out, nil
}

// Empty discards any buffered bytes, realigning the stream after a
// decode error or to drain leftover data.
func (b *BufferedStream) Empty() {
	b.buf = nil
}

// Buffered reports how many bytes are currently held without being
// consumed by a Read.
func (b *BufferedStream) Buffered() int { return len(b.buf) }

// String reports the stream's buffered byte count, for debug logging
// (e.g. "BufferedStream{buffered=3, default=10s}").
func (b *BufferedStream) String() string {
	return fmt.Sprintf("BufferedStream{buffered=%d, default=%s}", len(b.buf), b.def)
}
