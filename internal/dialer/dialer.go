// Package dialer performs single connectivity attempts through a proxy.
// Each protocol variant establishes a tunnel to a fixed probe target
// and reports whether the proxy granted it, refused it, or went quiet.
package dialer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// Verdict is the result of one attempt.
type Verdict int

const (
	// Success: the proxy completed its handshake and tunneled to the
	// probe target.
	Success Verdict = iota
	// Failure: the proxy refused the connection or broke the protocol.
	// Refusals are terminal, callers should not retry them.
	Failure
	// Timeout: no conclusive answer within the attempt deadline.
	Timeout
)

func (v Verdict) String() string {
	switch v {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Timeout:
		return "timeout"
	}
	return "unknown"
}

// Dialer attempts a protocol-specific handshake through one proxy.
// Implementations are stateless given (record, deadline): the context
// carries the per-attempt deadline and every connection is closed
// before Attempt returns, on all paths.
type Dialer interface {
	Attempt(ctx context.Context, rec model.ProxyRecord) (Verdict, error)
}

// ForProtocol returns the dialer variant for the given proxy type.
// probeTarget is the host:port the proxy is asked to tunnel to.
func ForProtocol(p model.Protocol, probeTarget string) (Dialer, error) {
	if _, _, err := net.SplitHostPort(probeTarget); err != nil {
		return nil, fmt.Errorf("invalid probe target: %w", err)
	}
	switch p {
	case model.ProtocolHTTP:
		return &connectDialer{target: probeTarget}, nil
	case model.ProtocolHTTPS:
		return &connectDialer{target: probeTarget, handshakeTLS: true}, nil
	case model.ProtocolSOCKS4:
		return &socks4Dialer{target: probeTarget}, nil
	case model.ProtocolSOCKS5:
		return &socks5Dialer{target: probeTarget}, nil
	}
	return nil, fmt.Errorf("no dialer for proxy type %q", p)
}

// classify maps a dial/handshake error to a verdict. Deadline-class
// errors become Timeout so the retry policy can tell a quiet proxy
// from an active refusal.
func classify(err error) Verdict {
	if err == nil {
		return Success
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return Timeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout
	}
	return Failure
}
