package dialer

import (
	"bufio"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"io"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// probeTarget never has to exist: the fake proxies grant or refuse the
// tunnel without connecting anywhere.
const probeTarget = "10.0.0.1:80"

const attemptTimeout = 250 * time.Millisecond

func attemptCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), attemptTimeout)
	t.Cleanup(cancel)
	return ctx
}

func recordFor(t *testing.T, addr string) model.ProxyRecord {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := net.LookupPort("tcp", portStr)
	require.NoError(t, err)
	return model.ProxyRecord{Host: host, Port: port}
}

// serve accepts connections until the listener closes and runs handler
// on each. The listener is torn down with the test.
func serve(t *testing.T, handler func(net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				handler(c)
			}(conn)
		}
	}()
	return ln.Addr().String()
}

// refusedAddr returns an address nothing is listening on.
func refusedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// ---------------------------------------------------------------------
// fake proxy handlers
// ---------------------------------------------------------------------

func httpProxyHandler(statusLine string, tlsConf *tls.Config) func(net.Conn) {
	return func(c net.Conn) {
		br := bufio.NewReader(c)
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			if line == "\r\n" || line == "\n" {
				break
			}
		}
		if _, err := c.Write([]byte("HTTP/1.1 " + statusLine + "\r\n\r\n")); err != nil {
			return
		}
		if tlsConf != nil {
			srv := tls.Server(c, tlsConf)
			_ = srv.Handshake()
		}
	}
}

func socks5Handler(rep byte) func(net.Conn) {
	return func(c net.Conn) {
		br := bufio.NewReader(c)
		hdr := make([]byte, 2)
		if _, err := io.ReadFull(br, hdr); err != nil {
			return
		}
		methods := make([]byte, int(hdr[1]))
		if _, err := io.ReadFull(br, methods); err != nil {
			return
		}
		if _, err := c.Write([]byte{0x05, 0x00}); err != nil {
			return
		}
		req := make([]byte, 4)
		if _, err := io.ReadFull(br, req); err != nil {
			return
		}
		var addrLen int
		switch req[3] {
		case 0x01:
			addrLen = 4
		case 0x04:
			addrLen = 16
		case 0x03:
			l := make([]byte, 1)
			if _, err := io.ReadFull(br, l); err != nil {
				return
			}
			addrLen = int(l[0])
		default:
			return
		}
		rest := make([]byte, addrLen+2)
		if _, err := io.ReadFull(br, rest); err != nil {
			return
		}
		_, _ = c.Write([]byte{0x05, rep, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
	}
}

func socks4Handler(status byte) func(net.Conn) {
	return func(c net.Conn) {
		br := bufio.NewReader(c)
		hdr := make([]byte, 8)
		if _, err := io.ReadFull(br, hdr); err != nil {
			return
		}
		// user id, null terminated
		if _, err := br.ReadBytes(0x00); err != nil {
			return
		}
		_, _ = c.Write([]byte{0x00, status, 0, 0, 0, 0, 0, 0})
	}
}

// silentHandler accepts and never answers.
func silentHandler(c net.Conn) {
	buf := make([]byte, 1024)
	for {
		if _, err := c.Read(buf); err != nil {
			return
		}
	}
}

func selfSignedTLS(t *testing.T) *tls.Config {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("10.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}},
	}
}

// ---------------------------------------------------------------------
// HTTP / HTTPS
// ---------------------------------------------------------------------

func TestHTTPDialer_TunnelGranted(t *testing.T) {
	addr := serve(t, httpProxyHandler("200 Connection established", nil))
	d, err := ForProtocol(model.ProtocolHTTP, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.NoError(t, err)
	require.Equal(t, Success, verdict)
}

func TestHTTPDialer_TunnelRefused(t *testing.T) {
	addr := serve(t, httpProxyHandler("403 Forbidden", nil))
	d, err := ForProtocol(model.ProtocolHTTP, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.Error(t, err)
	require.Equal(t, Failure, verdict)
}

func TestHTTPDialer_ConnectionRefused(t *testing.T) {
	addr := refusedAddr(t)
	d, err := ForProtocol(model.ProtocolHTTP, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.Error(t, err)
	require.Equal(t, Failure, verdict)
}

func TestHTTPDialer_SilentProxyTimesOut(t *testing.T) {
	addr := serve(t, silentHandler)
	d, err := ForProtocol(model.ProtocolHTTP, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.Error(t, err)
	require.Equal(t, Timeout, verdict)
}

func TestHTTPSDialer_TLSThroughTunnel(t *testing.T) {
	addr := serve(t, httpProxyHandler("200 Connection established", selfSignedTLS(t)))
	d, err := ForProtocol(model.ProtocolHTTPS, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.NoError(t, err)
	require.Equal(t, Success, verdict)
}

func TestHTTPSDialer_TunnelRefused(t *testing.T) {
	addr := serve(t, httpProxyHandler("407 Proxy Authentication Required", nil))
	d, err := ForProtocol(model.ProtocolHTTPS, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.Error(t, err)
	require.Equal(t, Failure, verdict)
}

// ---------------------------------------------------------------------
// SOCKS5
// ---------------------------------------------------------------------

func TestSOCKS5Dialer_Granted(t *testing.T) {
	addr := serve(t, socks5Handler(0x00))
	d, err := ForProtocol(model.ProtocolSOCKS5, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.NoError(t, err)
	require.Equal(t, Success, verdict)
}

func TestSOCKS5Dialer_ConnectRefusedByProxy(t *testing.T) {
	addr := serve(t, socks5Handler(0x05)) // connection refused reply
	d, err := ForProtocol(model.ProtocolSOCKS5, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.Error(t, err)
	require.Equal(t, Failure, verdict)
}

func TestSOCKS5Dialer_SilentProxyTimesOut(t *testing.T) {
	addr := serve(t, silentHandler)
	d, err := ForProtocol(model.ProtocolSOCKS5, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.Error(t, err)
	require.Equal(t, Timeout, verdict)
}

// ---------------------------------------------------------------------
// SOCKS4
// ---------------------------------------------------------------------

func TestSOCKS4Dialer_Granted(t *testing.T) {
	addr := serve(t, socks4Handler(0x5A))
	d, err := ForProtocol(model.ProtocolSOCKS4, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.NoError(t, err)
	require.Equal(t, Success, verdict)
}

func TestSOCKS4Dialer_GrantedWithCredentials(t *testing.T) {
	addr := serve(t, socks4Handler(0x5A))
	d, err := ForProtocol(model.ProtocolSOCKS4, probeTarget)
	require.NoError(t, err)

	rec := recordFor(t, addr)
	rec.Username = "user"
	rec.Password = "pass"
	verdict, err := d.Attempt(attemptCtx(t), rec)
	require.NoError(t, err)
	require.Equal(t, Success, verdict)
}

func TestSOCKS4Dialer_Rejected(t *testing.T) {
	addr := serve(t, socks4Handler(0x5B))
	d, err := ForProtocol(model.ProtocolSOCKS4, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.Error(t, err)
	require.Equal(t, Failure, verdict)
}

func TestSOCKS4Dialer_SilentProxyTimesOut(t *testing.T) {
	addr := serve(t, silentHandler)
	d, err := ForProtocol(model.ProtocolSOCKS4, probeTarget)
	require.NoError(t, err)

	verdict, err := d.Attempt(attemptCtx(t), recordFor(t, addr))
	require.Error(t, err)
	require.Equal(t, Timeout, verdict)
}

// ---------------------------------------------------------------------
// shared
// ---------------------------------------------------------------------

func TestForProtocol_Unknown(t *testing.T) {
	_, err := ForProtocol(model.Protocol("ftp"), probeTarget)
	require.Error(t, err)
}

func TestForProtocol_BadProbeTarget(t *testing.T) {
	_, err := ForProtocol(model.ProtocolHTTP, "no-port")
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	require.Equal(t, Success, classify(nil))
	require.Equal(t, Timeout, classify(context.DeadlineExceeded))
	require.Equal(t, Timeout, classify(&net.OpError{Op: "read", Err: timeoutErr{}}))
	require.Equal(t, Failure, classify(io.EOF))
	require.Equal(t, Failure, classify(context.Canceled))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
