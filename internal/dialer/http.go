package dialer

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"

	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// connectDialer probes HTTP proxies with a CONNECT request to the
// probe target. With handshakeTLS set it additionally completes a TLS
// handshake through the established tunnel, which is what an HTTPS
// client would do next.
type connectDialer struct {
	target       string
	handshakeTLS bool
}

func (d *connectDialer) Attempt(ctx context.Context, rec model.ProxyRecord) (Verdict, error) {
	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", rec.Addr())
	if err != nil {
		return classify(err), err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	req := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\n", d.target, d.target)
	if rec.Username != "" || rec.Password != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(rec.Username + ":" + rec.Password))
		req += "Proxy-Authorization: Basic " + cred + "\r\n"
	}
	req += "\r\n"

	if _, err := conn.Write([]byte(req)); err != nil {
		return classify(err), fmt.Errorf("write CONNECT: %w", err)
	}

	resp, err := http.ReadResponse(bufio.NewReader(conn), &http.Request{Method: http.MethodConnect})
	if err != nil {
		return classify(err), fmt.Errorf("read CONNECT response: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failure, fmt.Errorf("proxy refused tunnel: %s", resp.Status)
	}

	if d.handshakeTLS {
		host, _, err := net.SplitHostPort(d.target)
		if err != nil {
			return Failure, err
		}
		tlsConn := tls.Client(conn, &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true, // reachability check, not a trust decision
		})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return classify(err), fmt.Errorf("tls handshake through tunnel: %w", err)
		}
		_ = tlsConn.Close()
	}

	return Success, nil
}
