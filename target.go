package proxied

import (
	"net"
	"net/netip"
	"strconv"
)

// NetworkTarget is the final destination a tunnel must reach: either a
// domain name with a port, or a literal socket address. The form the
// caller supplies is preserved through negotiation, so a domain target
// is resolved by the proxy, not locally.
type NetworkTarget struct {
	domain string
	port   uint16
	addr   netip.AddrPort
}

// DomainTarget returns a target for a domain name and port.
func DomainTarget(domain string, port uint16) NetworkTarget {
	return NetworkTarget{domain: domain, port: port}
}

// AddrTarget returns a target for a literal socket address.
func AddrTarget(addr netip.AddrPort) NetworkTarget {
	return NetworkTarget{addr: addr}
}

// IsDomain reports whether the target is in domain form.
func (t NetworkTarget) IsDomain() bool { return t.domain != "" }

// Host returns the domain name or the literal IP as a string.
func (t NetworkTarget) Host() string {
	if t.IsDomain() {
		return t.domain
	}
	return t.addr.Addr().String()
}

// Port returns the destination port.
func (t NetworkTarget) Port() uint16 {
	if t.IsDomain() {
		return t.port
	}
	return t.addr.Port()
}

// String renders the target as host:port.
func (t NetworkTarget) String() string {
	if t.IsDomain() {
		return net.JoinHostPort(t.domain, strconv.Itoa(int(t.port)))
	}
	return t.addr.String()
}
