package model

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Protocol selects which handshake a dialer performs. One protocol
// applies to the whole batch.
type Protocol string

const (
	ProtocolHTTP   Protocol = "http"
	ProtocolHTTPS  Protocol = "https"
	ProtocolSOCKS4 Protocol = "socks4"
	ProtocolSOCKS5 Protocol = "socks5"
)

// ParseProtocol normalizes a user-supplied protocol name.
func ParseProtocol(s string) (Protocol, error) {
	switch Protocol(s) {
	case ProtocolHTTP, ProtocolHTTPS, ProtocolSOCKS4, ProtocolSOCKS5:
		return Protocol(s), nil
	}
	return "", fmt.Errorf("unknown proxy type %q (want http, https, socks4 or socks5)", s)
}

// ProxyRecord is a normalized proxy entry parsed from file lines such as:
//
//	ip:port
//	ip:port:username:password
//	username:password@ip:port
//
// Records are immutable once parsed. Two records are considered the
// same proxy when host and port match.
type ProxyRecord struct {
	Host     string   `json:"host"` // IPv4 or hostname
	Port     int      `json:"port"`
	Username string   `json:"-"`
	Password string   `json:"-"`
	Protocol Protocol `json:"protocol"`
	Raw      string   `json:"-"` // original line for debugging
}

// Addr returns the dialable host:port form.
func (r ProxyRecord) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Key is the deduplication identity of the record.
func (r ProxyRecord) Key() string {
	return r.Addr()
}

// Status is the terminal state of a proxy check.
type Status string

const (
	// StatusAlive means some attempt completed the protocol handshake
	// and reached the probe target.
	StatusAlive Status = "alive"
	// StatusDead means the proxy actively refused or broke the
	// handshake. Refusals are not retried.
	StatusDead Status = "dead"
	// StatusTimedOut means every attempt ran out the per-attempt
	// deadline without an answer.
	StatusTimedOut Status = "timed_out"
)

// CheckOutcome is the final result for a single proxy after retries
// are exhausted or a success occurs. Never mutated after creation.
type CheckOutcome struct {
	Record   ProxyRecord
	Status   Status
	Attempts int
	Elapsed  time.Duration
	Err      string // last dial error, if any
}

// MarshalJSON reports elapsed time in milliseconds, the unit every
// other writer uses.
func (o CheckOutcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Record    ProxyRecord `json:"record"`
		Status    Status      `json:"status"`
		Attempts  int         `json:"attempts"`
		ElapsedMs int64       `json:"elapsed_ms"`
		Err       string      `json:"error,omitempty"`
	}{
		Record:    o.Record,
		Status:    o.Status,
		Attempts:  o.Attempts,
		ElapsedMs: o.Elapsed.Milliseconds(),
		Err:       o.Err,
	})
}

// Alive reports whether the check ended with a working proxy.
func (o CheckOutcome) Alive() bool {
	return o.Status == StatusAlive
}

// BatchStats aggregates summary analytics for an entire run.
type BatchStats struct {
	TotalProxies          int     `json:"total_proxies"`
	AliveProxies          int     `json:"alive_proxies"`
	DeadProxies           int     `json:"dead_proxies"`
	TimedOutProxies       int     `json:"timed_out_proxies"`
	MalformedLines        int     `json:"malformed_lines"`
	DuplicateLines        int     `json:"duplicate_lines"`
	AvgLatencyMs          float64 `json:"avg_latency_ms"`
	SuccessRatePct        float64 `json:"success_rate_pct"`
	CheckedPerMinute      float64 `json:"checked_per_minute"`
	TotalProcessingTimeMs int64   `json:"total_processing_time_ms"`
}
