package dialer

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/net/proxy"

	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// socks5Dialer probes SOCKS5 proxies. The x/net proxy dialer performs
// the greeting (no-auth or username/password) and the CONNECT request;
// a non-zero reply code comes back as an error.
type socks5Dialer struct {
	target string
}

func (d *socks5Dialer) Attempt(ctx context.Context, rec model.ProxyRecord) (Verdict, error) {
	var auth *proxy.Auth
	if rec.Username != "" || rec.Password != "" {
		auth = &proxy.Auth{User: rec.Username, Password: rec.Password}
	}

	pd, err := proxy.SOCKS5("tcp", rec.Addr(), auth, &net.Dialer{})
	if err != nil {
		return Failure, fmt.Errorf("build socks5 dialer: %w", err)
	}

	cd, ok := pd.(proxy.ContextDialer)
	if !ok {
		return Failure, errors.New("socks5 dialer does not support contexts")
	}

	conn, err := cd.DialContext(ctx, "tcp", d.target)
	if err != nil {
		return classify(err), err
	}
	_ = conn.Close()
	return Success, nil
}
