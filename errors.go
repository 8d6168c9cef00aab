package proxied

import (
	"errors"

	"github.com/hdbg/proxied/internal/resolve"
	"github.com/hdbg/proxied/internal/tunnel"
)

// Connect failures form a closed taxonomy. Every error returned by
// Connect either is, or wraps, one of the sentinels below, is an
// *AuthFailedError, or is an underlying transport error reachable with
// errors.As (the I/O case). No retries or masking happen internally;
// retry and backoff policy belongs to the caller.
var (
	// ErrDNSNameNotResolved: the proxy domain's lookup returned zero
	// addresses, or its cache entry is empty.
	ErrDNSNameNotResolved = resolve.ErrNoRecords

	// ErrAddrParse: the descriptor's host looked like an IP literal but
	// failed to parse as one.
	ErrAddrParse = errors.New("failed to parse proxy address")

	// ErrAuthMethodUnacceptable: the proxy refused the offered SOCKS
	// authentication methods.
	ErrAuthMethodUnacceptable = tunnel.ErrAuthMethodUnacceptable

	// ErrWrongProtocol: the proxy answered with an unsupported protocol
	// version.
	ErrWrongProtocol = tunnel.ErrWrongProtocol

	// ErrExceededMaxDomainLen: the target domain does not fit the SOCKS
	// address encoding.
	ErrExceededMaxDomainLen = tunnel.ErrExceededMaxDomainLen

	// ErrSOCKSTunnel wraps SOCKS handshake failures not classified
	// further.
	ErrSOCKSTunnel = tunnel.ErrSOCKS

	// ErrHTTPTunnel wraps HTTP CONNECT failures not classified further.
	ErrHTTPTunnel = tunnel.ErrHTTP
)

// AuthFailedError reports rejected proxy credentials; match with
// errors.As. Details is empty when the rejection carries no reason
// (the HTTP 407 signal).
type AuthFailedError = tunnel.AuthFailedError
