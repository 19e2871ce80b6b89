package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// ErrNoProxies is returned when a source contains no usable entries.
var ErrNoProxies = errors.New("no valid proxies found")

// Stats counts lines dropped while building a batch.
type Stats struct {
	Malformed  int
	Duplicates int
}

// LoadFromFile reads a proxy list file and returns the deduplicated
// batch. Supported line formats:
//
//	ip:port
//	ip:port:username:password
//	username:password@ip:port
//
// Empty lines and lines starting with '#' are ignored. Malformed lines
// are dropped and counted, never fatal. The batch keeps first-seen
// order; later duplicates of the same host:port are discarded.
func LoadFromFile(path string, proto model.Protocol) ([]model.ProxyRecord, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	return Load(f, proto)
}

// Load builds a batch from any line-oriented reader.
func Load(r io.Reader, proto model.Protocol) ([]model.ProxyRecord, Stats, error) {
	var (
		out   []model.ProxyRecord
		stats Stats
		seen  = make(map[string]struct{})
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := parseProxyLine(line, proto)
		if err != nil {
			stats.Malformed++
			continue
		}

		if _, dup := seen[rec.Key()]; dup {
			stats.Duplicates++
			continue
		}
		seen[rec.Key()] = struct{}{}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan input: %w", err)
	}
	if len(out) == 0 {
		return nil, stats, ErrNoProxies
	}
	return out, stats, nil
}

// parseProxyLine parses a single proxy line into a ProxyRecord.
func parseProxyLine(line string, proto model.Protocol) (model.ProxyRecord, error) {
	// username:password@ip:port
	if strings.Contains(line, "@") {
		parts := strings.SplitN(line, "@", 2)
		user, pass, err := splitUserPass(parts[0])
		if err != nil {
			return model.ProxyRecord{}, err
		}
		host, port, err := splitHostPort(parts[1])
		if err != nil {
			return model.ProxyRecord{}, err
		}
		return model.ProxyRecord{
			Host:     host,
			Port:     port,
			Username: user,
			Password: pass,
			Protocol: proto,
			Raw:      line,
		}, nil
	}

	col := strings.Split(line, ":")
	switch len(col) {
	case 2:
		// ip:port
		host, port, err := splitHostPort(line)
		if err != nil {
			return model.ProxyRecord{}, err
		}
		return model.ProxyRecord{
			Host:     host,
			Port:     port,
			Protocol: proto,
			Raw:      line,
		}, nil

	case 4:
		// ip:port:user:pass
		host, port, err := splitHostPort(col[0] + ":" + col[1])
		if err != nil {
			return model.ProxyRecord{}, err
		}
		return model.ProxyRecord{
			Host:     host,
			Port:     port,
			Username: col[2],
			Password: col[3],
			Protocol: proto,
			Raw:      line,
		}, nil

	default:
		return model.ProxyRecord{}, fmt.Errorf("unrecognized proxy format: %q", line)
	}
}

func splitUserPass(s string) (string, string, error) {
	up := strings.SplitN(s, ":", 2)
	if len(up) != 2 {
		return "", "", fmt.Errorf("invalid auth (expected user:pass): %q", s)
	}
	return up[0], up[1], nil
}

// splitHostPort handles host:port for IPv4 or hostname and validates
// the port range.
func splitHostPort(s string) (string, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid host:port: %q", s)
	}
	host := strings.TrimSpace(parts[0])
	if host == "" {
		return "", 0, fmt.Errorf("empty host in %q", s)
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q", parts[1])
	}
	if port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("port %d out of range", port)
	}
	return host, port, nil
}
