package tunnel

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/hdbg/proxied/internal/testutil"
)

func TestHTTPConnectSuccess(t *testing.T) {
	tests := []struct {
		name string
		user string
		pass string
	}{
		{name: "no_auth"},
		{name: "basic_auth", user: "user", pass: "pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			echoLn := testutil.StartEchoServer(t, ctx)
			upLn, waitUp := testutil.StartServer(t, ctx, func(c net.Conn) {
				testutil.HandleHTTPConnect(c, tt.user, tt.pass)
			})

			conn := dialProxy(t, ctx, upLn)
			auth := Auth{Username: tt.user, Password: tt.pass}
			if err := HTTPConnect(conn, auth, echoLn.Addr().String()); err != nil {
				t.Fatal(err)
			}

			testutil.AssertEcho(t, conn, conn, []byte("hello"))

			_ = conn.Close()
			waitUp()
		})
	}
}

func TestHTTPConnectAuthRequired(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	upLn, waitUp := testutil.StartServer(t, ctx, func(c net.Conn) {
		testutil.HandleHTTPConnect(c, "user", "pass")
	})

	conn := dialProxy(t, ctx, upLn)
	err := HTTPConnect(conn, Auth{}, "127.0.0.1:1")

	// The 407 signal carries no rejection details.
	var authErr *AuthFailedError
	if !errors.As(err, &authErr) {
		t.Fatalf("got %v want AuthFailedError", err)
	}
	if authErr.Details != "" {
		t.Fatalf("got details %q want none", authErr.Details)
	}

	_ = conn.Close()
	waitUp()
}

func TestHTTPConnectNon2xx(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	upLn, waitUp := testutil.StartServer(t, ctx, func(c net.Conn) {
		br := bufio.NewReader(c)
		req, err := http.ReadRequest(br)
		if err != nil {
			return
		}
		_ = req.Body.Close()
		_, _ = io.WriteString(c, "HTTP/1.1 403 Forbidden\r\n\r\n")
	})

	conn := dialProxy(t, ctx, upLn)
	err := HTTPConnect(conn, Auth{}, "127.0.0.1:1")
	if !errors.Is(err, ErrHTTP) {
		t.Fatalf("got %v want ErrHTTP", err)
	}

	_ = conn.Close()
	waitUp()
}

func TestHTTPConnectSendsBasicAuthHeader(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	headerCh := make(chan string, 1)
	upLn, waitUp := testutil.StartServer(t, ctx, func(c net.Conn) {
		br := bufio.NewReader(c)
		req, err := http.ReadRequest(br)
		if err != nil {
			return
		}
		_ = req.Body.Close()
		headerCh <- req.Header.Get("Proxy-Authorization")
		_, _ = io.WriteString(c, "HTTP/1.1 200 Connection Established\r\n\r\n")
	})

	conn := dialProxy(t, ctx, upLn)
	if err := HTTPConnect(conn, Auth{Username: "user", Password: "pass"}, "127.0.0.1:1"); err != nil {
		t.Fatal(err)
	}

	// base64("user:pass")
	if got, want := <-headerCh, "Basic dXNlcjpwYXNz"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	_ = conn.Close()
	waitUp()
}
