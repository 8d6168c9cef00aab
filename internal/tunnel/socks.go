package tunnel

import (
	"errors"
	"fmt"
	"net"

	"github.com/txthinking/socks5"
)

// Auth carries optional proxy credentials. Empty Username means no
// authentication is offered.
type Auth struct {
	Username string
	Password string
}

// maxDomainLen is the largest domain the SOCKS5 address encoding can
// carry (one length octet).
const maxDomainLen = 255

// SOCKS upgrades conn into a tunnel to address by negotiating SOCKS5
// and issuing a CONNECT. address may be ip:port or domain:port;
// whichever form is given is sent to the proxy unchanged. On error the
// conn is no longer usable and should be closed by the caller.
func SOCKS(conn net.Conn, auth Auth, address string) error {
	if err := socksNegotiate(conn, auth); err != nil {
		return err
	}
	return socksConnect(conn, address)
}

func socksNegotiate(conn net.Conn, auth Auth) error {
	methods := []byte{socks5.MethodNone}
	if auth.Username != "" {
		methods = append(methods, socks5.MethodUsernamePassword)
	}

	if _, err := socks5.NewNegotiationRequest(methods).WriteTo(conn); err != nil {
		return fmt.Errorf("%w: write negotiation: %w", ErrSOCKS, err)
	}

	neg, err := socks5.NewNegotiationReplyFrom(conn)
	if err != nil {
		if errors.Is(err, socks5.ErrVersion) {
			return ErrWrongProtocol
		}
		return fmt.Errorf("%w: read negotiation: %w", ErrSOCKS, err)
	}

	switch neg.Method {
	case socks5.MethodNone:
		return nil
	case socks5.MethodUsernamePassword:
		if auth.Username == "" {
			return ErrAuthMethodUnacceptable
		}
		return socksUserPass(conn, auth)
	default:
		// Covers 0xff (no acceptable methods) and any method we did not offer.
		return ErrAuthMethodUnacceptable
	}
}

func socksUserPass(conn net.Conn, auth Auth) error {
	req := socks5.NewUserPassNegotiationRequest([]byte(auth.Username), []byte(auth.Password))
	if _, err := req.WriteTo(conn); err != nil {
		return fmt.Errorf("%w: write userpass: %w", ErrSOCKS, err)
	}

	rep, err := socks5.NewUserPassNegotiationReplyFrom(conn)
	if err != nil {
		return fmt.Errorf("%w: read userpass: %w", ErrSOCKS, err)
	}
	if rep.Status != socks5.UserPassStatusSuccess {
		return &AuthFailedError{Details: fmt.Sprintf("userpass status 0x%02x", rep.Status)}
	}
	return nil
}

func socksConnect(conn net.Conn, address string) error {
	atyp, dstAddr, dstPort, err := socks5.ParseAddress(address)
	if err != nil {
		return fmt.Errorf("%w: parse address %q: %w", ErrSOCKS, address, err)
	}
	if atyp == socks5.ATYPDomain {
		// ParseAddress prepends the length octet; NewRequest adds it back.
		dstAddr = dstAddr[1:]
		if len(dstAddr) > maxDomainLen {
			return ErrExceededMaxDomainLen
		}
	}

	if _, err := socks5.NewRequest(socks5.CmdConnect, atyp, dstAddr, dstPort).WriteTo(conn); err != nil {
		return fmt.Errorf("%w: write connect: %w", ErrSOCKS, err)
	}

	rep, err := socks5.NewReplyFrom(conn)
	if err != nil {
		if errors.Is(err, socks5.ErrVersion) {
			return ErrWrongProtocol
		}
		return fmt.Errorf("%w: read connect reply: %w", ErrSOCKS, err)
	}
	if rep.Rep != socks5.RepSuccess {
		return fmt.Errorf("%w: connect rejected: reply 0x%02x", ErrSOCKS, rep.Rep)
	}
	return nil
}
