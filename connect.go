package proxied

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/hdbg/proxied/internal/resolve"
	"github.com/hdbg/proxied/internal/tunnel"
)

// Connect establishes a TCP tunnel to target through the proxy: the
// proxy address is resolved (with process-wide caching and round-robin
// over its A records), a raw connection is dialed, and the kind's
// handshake upgrades it into the tunnel.
//
// The raw connection is consumed either way: on success it backs the
// returned Conn, on failure it is closed. Deadlines and cancellation
// come from ctx; Connect itself never retries and imposes no timeouts.
func (p *Proxy) Connect(ctx context.Context, target NetworkTarget) (*Conn, error) {
	addr, err := p.resolveAddr(ctx)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, fmt.Errorf("dial proxy: %w", err)
	}

	conn, err := p.negotiate(ctx, raw, target)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}

	return &Conn{Conn: conn, kind: p.Kind, target: target}, nil
}

// DialContext dials address ("host:port") through the proxy, so a Proxy
// can stand in wherever a context dialer is expected. The host is
// classified as domain or IP literal and passed to the proxy in that
// form. Only tcp networks are supported.
func (p *Proxy) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if !strings.HasPrefix(network, "tcp") {
		return nil, fmt.Errorf("proxy dial %s %s: unsupported network", network, address)
	}

	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("proxy dial: %w", err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("proxy dial: invalid port %q", portStr)
	}

	var target NetworkTarget
	if ip, err := netip.ParseAddr(host); err == nil {
		target = AddrTarget(netip.AddrPortFrom(ip, uint16(port)))
	} else {
		target = DomainTarget(host, uint16(port))
	}

	return p.Connect(ctx, target)
}

// resolveAddr produces the proxy's socket address. Domain hosts go
// through the shared resolver; literal hosts are parsed directly and
// never touch the cache.
func (p *Proxy) resolveAddr(ctx context.Context) (netip.AddrPort, error) {
	if p.IsDomainAddr() {
		ip, err := resolve.Default().Resolve(ctx, p.Host)
		if err != nil {
			return netip.AddrPort{}, err
		}
		return netip.AddrPortFrom(ip, p.Port), nil
	}

	ip, err := netip.ParseAddr(p.Host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: %q", ErrAddrParse, p.Host)
	}
	return netip.AddrPortFrom(ip, p.Port), nil
}

func (p *Proxy) negotiate(ctx context.Context, raw net.Conn, target NetworkTarget) (net.Conn, error) {
	auth := tunnel.Auth{Username: p.Username, Password: p.Password}

	switch p.Kind {
	case SOCKS4, SOCKS5:
		if err := tunnel.SOCKS(raw, auth, target.String()); err != nil {
			return nil, err
		}
		return raw, nil

	case HTTP, HTTPS:
		conn := raw
		if p.Kind == HTTPS {
			tlsConn := tls.Client(raw, &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: p.Host,
			})
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				return nil, fmt.Errorf("proxy tls handshake: %w", err)
			}
			conn = tlsConn
		}
		if err := tunnel.HTTPConnect(conn, auth, target.String()); err != nil {
			return nil, err
		}
		return conn, nil

	default:
		return nil, fmt.Errorf("unsupported proxy kind: %q", p.Kind)
	}
}
