package tunnel

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// HTTPConnect upgrades conn into a tunnel to address by issuing an HTTP
// CONNECT, with Proxy-Authorization basic auth when credentials are
// present. A 407 response maps to AuthFailedError (the proxy does not
// say why); any other non-2xx status is a generic HTTP failure. On
// error the conn is no longer usable and should be closed by the
// caller.
func HTTPConnect(conn net.Conn, auth Auth, address string) error {
	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: address},
		Host:   address,
		Header: make(http.Header),
	}
	if auth.Username != "" {
		cred := base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))
		req.Header.Set("Proxy-Authorization", "Basic "+cred)
	}

	if err := req.Write(conn); err != nil {
		return fmt.Errorf("http connect write: %w", err)
	}

	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		return fmt.Errorf("http connect read: %w", err)
	}
	_ = resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusProxyAuthRequired:
		return &AuthFailedError{}
	case resp.StatusCode/100 != 2:
		return fmt.Errorf("%w: %s", ErrHTTP, resp.Status)
	}
	return nil
}
