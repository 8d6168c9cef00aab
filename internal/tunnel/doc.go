// Package tunnel upgrades an established proxy connection into a
// tunnel to a target by speaking either the SOCKS5 or the HTTP CONNECT
// protocol, and normalizes the two protocols' failure modes into one
// set of errors.
//
// It wraps the low-level wire types in github.com/txthinking/socks5 on
// the SOCKS side; the HTTP side builds the CONNECT request by hand so
// the raw connection stays usable as the tunnel afterwards.
package tunnel
