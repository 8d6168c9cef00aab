// Package proxied establishes outbound TCP tunnels through SOCKS4/5 and
// HTTP/HTTPS CONNECT proxies and presents the result as an ordinary
// net.Conn.
//
// A Proxy descriptor is either constructed directly or parsed from a
// string with Parse. Connect resolves the proxy address (caching DNS
// results process-wide with round-robin selection across A records),
// dials the proxy, performs the protocol handshake, and returns a Conn
// carrying the tunnel.
//
// The package performs no retries, no logging, and no internal
// timeouts; callers bound latency with the context passed to Connect.
package proxied
