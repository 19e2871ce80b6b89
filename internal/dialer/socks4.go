package dialer

import (
	"context"
	"net"
	"net/url"
	"time"

	"h12.io/socks"

	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// socks4Dialer probes SOCKS4 proxies. The socks package performs the
// version-4 request and only returns a connection when the proxy
// answers request-granted (0x5A); any other reply surfaces as an error.
type socks4Dialer struct {
	target string
}

func (d *socks4Dialer) Attempt(ctx context.Context, rec model.ProxyRecord) (Verdict, error) {
	timeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return Timeout, context.DeadlineExceeded
		}
	}

	// The library deadline is a backstop slightly past the attempt
	// deadline; the context decides how a slow proxy is classified.
	// Credentials stay out of the URI: the socks package rejects
	// userinfo without a password and always sends an empty SOCKS4
	// user id regardless.
	u := &url.URL{
		Scheme:   "socks4",
		Host:     rec.Addr(),
		RawQuery: "timeout=" + (timeout + 500*time.Millisecond).String(),
	}
	dial := socks.Dial(u.String())

	// The socks dial function is not context-aware, so run it on the
	// side and honor cancellation here. The stray goroutine closes the
	// connection itself if nobody is left to take it.
	type dialResult struct {
		conn net.Conn
		err  error
	}
	done := make(chan dialResult, 1)
	go func() {
		conn, err := dial("tcp", d.target)
		done <- dialResult{conn, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.conn != nil {
				_ = r.conn.Close()
			}
		}()
		return classify(ctx.Err()), ctx.Err()
	case r := <-done:
		if r.err != nil {
			return classify(r.err), r.err
		}
		_ = r.conn.Close()
		return Success, nil
	}
}
