package proxied

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/hdbg/proxied/internal/testutil"
)

func proxyFor(ln net.Listener, kind Kind, user, pass string) *Proxy {
	addr := ln.Addr().(*net.TCPAddr)
	return &Proxy{
		Kind:     kind,
		Host:     addr.IP.String(),
		Port:     uint16(addr.Port),
		Username: user,
		Password: pass,
	}
}

func echoTarget(ln net.Listener) NetworkTarget {
	addr := ln.Addr().(*net.TCPAddr)
	return AddrTarget(netip.AddrPortFrom(netip.MustParseAddr(addr.IP.String()), uint16(addr.Port)))
}

func TestConnectSOCKS(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		user string
		pass string
	}{
		{name: "socks5_no_auth", kind: SOCKS5},
		{name: "socks5_user_pass", kind: SOCKS5, user: "user", pass: "pass"},
		// SOCKS4 descriptors negotiate the same handshake.
		{name: "socks4", kind: SOCKS4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			echoLn := testutil.StartEchoServer(t, ctx)
			upLn, waitUp := testutil.StartServer(t, ctx, func(c net.Conn) {
				testutil.HandleSOCKS5(c, tt.user, tt.pass)
			})

			p := proxyFor(upLn, tt.kind, tt.user, tt.pass)
			conn, err := p.Connect(ctx, echoTarget(echoLn))
			if err != nil {
				t.Fatal(err)
			}

			if conn.ProxyKind() != tt.kind {
				t.Fatalf("got kind %q want %q", conn.ProxyKind(), tt.kind)
			}
			testutil.AssertEcho(t, conn, conn, []byte("hello"))

			_ = conn.Close()
			waitUp()
		})
	}
}

func TestConnectSOCKSDomainTarget(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	echoLn := testutil.StartEchoServer(t, ctx)
	upLn, waitUp := testutil.StartServer(t, ctx, func(c net.Conn) {
		testutil.HandleSOCKS5(c, "", "")
	})

	// The domain form reaches the proxy unresolved; the test proxy
	// resolves it when dialing.
	port := uint16(echoLn.Addr().(*net.TCPAddr).Port)
	target := DomainTarget("localhost", port)

	p := proxyFor(upLn, SOCKS5, "", "")
	conn, err := p.Connect(ctx, target)
	if err != nil {
		t.Fatal(err)
	}
	if conn.Target() != target {
		t.Fatalf("got target %v want %v", conn.Target(), target)
	}

	testutil.AssertEcho(t, conn, conn, []byte("hello"))

	_ = conn.Close()
	waitUp()
}

func TestConnectHTTP(t *testing.T) {
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

			p := proxyFor(upLn, HTTP, tt.user, tt.pass)
			conn, err := p.Connect(ctx, echoTarget(echoLn))
			if err != nil {
				t.Fatal(err)
			}

			testutil.AssertEcho(t, conn, conn, []byte("hello"))

			_ = conn.Close()
			waitUp()
		})
	}
}

func TestConnectSOCKSAuthFailed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	upLn, waitUp := testutil.StartServer(t, ctx, func(c net.Conn) {
		testutil.HandleSOCKS5(c, "user", "right")
	})

	p := proxyFor(upLn, SOCKS5, "user", "wrong")
	_, err := p.Connect(ctx, DomainTarget("target.example", 80))

	var authErr *AuthFailedError
	if !errors.As(err, &authErr) {
		t.Fatalf("got %v want AuthFailedError", err)
	}
	if authErr.Details == "" {
		t.Fatal("expected rejection details from the socks proxy")
	}

	waitUp()
}

func TestConnectHTTPAuthRequired(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	upLn, waitUp := testutil.StartServer(t, ctx, func(c net.Conn) {
		testutil.HandleHTTPConnect(c, "user", "pass")
	})

	// Same credentials shape as the SOCKS case, but the 407 signal
	// carries no details.
	p := proxyFor(upLn, HTTP, "", "")
	_, err := p.Connect(ctx, DomainTarget("target.example", 80))

	var authErr *AuthFailedError
	if !errors.As(err, &authErr) {
		t.Fatalf("got %v want AuthFailedError", err)
	}
	if authErr.Details != "" {
		t.Fatalf("got details %q want none", authErr.Details)
	}

	waitUp()
}

func TestConnectMalformedLiteralAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// No alphabetic characters, so this classifies as an IP literal and
	// must fail parsing rather than hit the resolver.
	p := &Proxy{Kind: SOCKS5, Host: "300.300.300.300", Port: 1080}
	_, err := p.Connect(ctx, DomainTarget("target.example", 80))
	if !errors.Is(err, ErrAddrParse) {
		t.Fatalf("got %v want ErrAddrParse", err)
	}
}

func TestDialContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	echoLn := testutil.StartEchoServer(t, ctx)
	upLn, waitUp := testutil.StartServer(t, ctx, func(c net.Conn) {
		testutil.HandleSOCKS5(c, "", "")
	})

	p := proxyFor(upLn, SOCKS5, "", "")

	conn, err := p.DialContext(ctx, "tcp", echoLn.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEcho(t, conn, conn, []byte("hello"))
	_ = conn.Close()

	if _, err := p.DialContext(ctx, "udp", "127.0.0.1:53"); err == nil {
		t.Fatal("expected error for udp")
	}
	if _, err := p.DialContext(ctx, "tcp", "missing-port"); err == nil {
		t.Fatal("expected error for bad address")
	}

	waitUp()
}
