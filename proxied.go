package proxied

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind identifies the protocol spoken to the proxy server.
type Kind string

const (
	SOCKS4 Kind = "socks4"
	SOCKS5 Kind = "socks5"
	HTTP   Kind = "http"
	HTTPS  Kind = "https"
)

// ParseKind parses a protocol name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case SOCKS4:
		return SOCKS4, nil
	case SOCKS5:
		return SOCKS5, nil
	case HTTP:
		return HTTP, nil
	case HTTPS:
		return HTTPS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) String() string { return string(k) }

// Proxy describes a proxy server: protocol kind, address, port,
// optional credentials, and an optional refresh URL (a link that
// requests an IP rotation for the proxy; the library stores it but
// never calls it).
//
// Empty Username means no credentials. A Proxy is immutable once
// constructed; Connect never modifies it.
type Proxy struct {
	Kind Kind
	Host string
	Port uint16

	Username string
	Password string

	RefreshURL string
}

// IsDomainAddr reports whether Host is a domain name rather than an IP
// literal. Classification is by alphabetic-character presence, matching
// the descriptor format this library accepts (IPv4 or domain hosts).
func (p *Proxy) IsDomainAddr() bool {
	return strings.ContainsFunc(p.Host, unicode.IsLetter)
}

// IsIPAddr reports whether Host is an IP literal.
func (p *Proxy) IsIPAddr() bool {
	return !p.IsDomainAddr()
}
