package proxied

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrInvalidKind       = errors.New("unrecognized proxy kind")
	ErrInvalidPort       = errors.New("invalid proxy port")
	ErrInvalidFormat     = errors.New("malformed proxy descriptor")
	ErrInvalidRefreshURL = errors.New("malformed refresh url suffix")
)

// Parse parses a proxy descriptor in either layout:
//
//	kind://[login:password@]host:port
//	kind:[login:password@]host:port
//
// optionally followed by a [refresh_url] suffix. The URL layout may
// omit the port, in which case the kind's default port applies (1080
// for socks4/socks5, 80 for http, 443 for https).
func Parse(s string) (*Proxy, error) {
	refresh := ""
	if strings.HasSuffix(s, "]") {
		i := strings.LastIndex(s, "[")
		if i < 0 {
			return nil, ErrInvalidRefreshURL
		}
		refresh = s[i+1 : len(s)-1]
		s = s[:i]
	}

	if strings.Contains(s, "://") {
		return parseURL(s, refresh)
	}
	return parseDelimited(s, refresh)
}

func parseURL(s, refresh string) (*Proxy, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if u.Path != "" && u.Path != "/" {
		return nil, fmt.Errorf("%w: path must be empty", ErrInvalidFormat)
	}

	kind, err := ParseKind(u.Scheme)
	if err != nil {
		return nil, err
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidFormat)
	}

	portStr := u.Port()
	if portStr == "" {
		portStr = defaultPort(kind)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
	}

	p := &Proxy{Kind: kind, Host: host, Port: uint16(port), RefreshURL: refresh}
	if u.User != nil {
		p.Username = u.User.Username()
		p.Password, _ = u.User.Password()
	}
	return p, nil
}

func parseDelimited(s, refresh string) (*Proxy, error) {
	kindStr, rest, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	kind, err := ParseKind(kindStr)
	if err != nil {
		return nil, err
	}

	p := &Proxy{Kind: kind, RefreshURL: refresh}
	if creds, hostPort, found := strings.Cut(rest, "@"); found {
		login, password, ok := strings.Cut(creds, ":")
		if !ok {
			return nil, fmt.Errorf("%w: credentials need login:password", ErrInvalidFormat)
		}
		p.Username, p.Password = login, password
		rest = hostPort
	}

	host, portStr, ok := strings.Cut(rest, ":")
	if !ok || host == "" || strings.Contains(portStr, ":") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPort, portStr)
	}

	p.Host, p.Port = host, uint16(port)
	return p, nil
}

func defaultPort(kind Kind) string {
	switch kind {
	case HTTP:
		return "80"
	case HTTPS:
		return "443"
	default: // socks4, socks5
		return "1080"
	}
}

// String renders the descriptor in URL layout, credentials included.
// The refresh URL suffix is appended when present, so the output parses
// back into an equal descriptor.
func (p *Proxy) String() string {
	var b strings.Builder
	b.WriteString(string(p.Kind))
	b.WriteString("://")
	if p.Username != "" {
		b.WriteString(p.Username)
		b.WriteByte(':')
		b.WriteString(p.Password)
		b.WriteByte('@')
	}
	fmt.Fprintf(&b, "%s:%d", p.Host, p.Port)
	if p.RefreshURL != "" {
		fmt.Fprintf(&b, "[%s]", p.RefreshURL)
	}
	return b.String()
}
