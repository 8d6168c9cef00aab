package tunnel

import "errors"

var (
	// ErrAuthMethodUnacceptable means the proxy refused every offered
	// SOCKS authentication method, or demanded one we cannot satisfy.
	ErrAuthMethodUnacceptable = errors.New("proxy refused offered authentication methods")

	// ErrWrongProtocol means the proxy answered with an unsupported
	// protocol version.
	ErrWrongProtocol = errors.New("proxy answered with unsupported protocol version")

	// ErrExceededMaxDomainLen means the target domain does not fit the
	// single length octet of the SOCKS5 address encoding.
	ErrExceededMaxDomainLen = errors.New("target domain name too long for socks encoding")

	// ErrSOCKS wraps SOCKS handshake failures not classified further.
	ErrSOCKS = errors.New("socks tunnel failed")

	// ErrHTTP wraps HTTP CONNECT failures not classified further.
	ErrHTTP = errors.New("http tunnel failed")
)

// AuthFailedError reports rejected proxy credentials. Details carries
// the proxy's reason when the protocol conveys one; it is empty for the
// HTTP 407 signal, which has none.
type AuthFailedError struct {
	Details string
}

func (e *AuthFailedError) Error() string {
	if e.Details == "" {
		return "proxy authentication failed"
	}
	return "proxy authentication failed: " + e.Details
}
