package testutil

import (
	"bufio"
	"encoding/base64"
	"io"
	"net"
	"net/http"

	"github.com/txthinking/socks5"
)

// HandleSOCKS5 serves one SOCKS5 CONNECT exchange on c. Empty username
// disables authentication; otherwise user/pass sub-negotiation is
// required and mismatched credentials get a failure status. On success
// the destination is dialed and traffic relayed until either side
// closes.
func HandleSOCKS5(c net.Conn, username, password string) {
	if _, err := socks5.NewNegotiationRequestFrom(c); err != nil {
		return
	}

	if username == "" {
		if _, err := socks5.NewNegotiationReply(socks5.MethodNone).WriteTo(c); err != nil {
			return
		}
	} else {
		if _, err := socks5.NewNegotiationReply(socks5.MethodUsernamePassword).WriteTo(c); err != nil {
			return
		}
		urq, err := socks5.NewUserPassNegotiationRequestFrom(c)
		if err != nil {
			return
		}
		if string(urq.Uname) != username || string(urq.Passwd) != password {
			_, _ = socks5.NewUserPassNegotiationReply(socks5.UserPassStatusFailure).WriteTo(c)
			return
		}
		if _, err := socks5.NewUserPassNegotiationReply(socks5.UserPassStatusSuccess).WriteTo(c); err != nil {
			return
		}
	}

	req, err := socks5.NewRequestFrom(c)
	if err != nil {
		return
	}
	if req.Cmd != socks5.CmdConnect {
		writeReply(c, socks5.RepCommandNotSupported)
		return
	}

	dst, err := net.Dial("tcp", req.Address())
	if err != nil {
		writeReply(c, socks5.RepHostUnreachable)
		return
	}
	defer dst.Close()

	a, addr, port, err := socks5.ParseAddress(dst.LocalAddr().String())
	if err != nil {
		return
	}
	if a == socks5.ATYPDomain {
		addr = addr[1:]
	}
	if _, err := socks5.NewReply(socks5.RepSuccess, a, addr, port).WriteTo(c); err != nil {
		return
	}

	relay(c, dst)
}

// HandleHTTPConnect serves one HTTP CONNECT exchange on c. Empty
// username disables authentication; otherwise a matching basic auth
// Proxy-Authorization header is required and anything else gets a 407.
func HandleHTTPConnect(c net.Conn, username, password string) {
	br := bufio.NewReader(c)
	req, err := http.ReadRequest(br)
	if err != nil {
		return
	}
	_ = req.Body.Close()
	if req.Method != http.MethodConnect {
		_, _ = io.WriteString(c, "HTTP/1.1 400 Bad Request\r\n\r\n")
		return
	}

	if username != "" {
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
		if req.Header.Get("Proxy-Authorization") != want {
			_, _ = io.WriteString(c, "HTTP/1.1 407 Proxy Authentication Required\r\n\r\n")
			return
		}
	}

	dst, err := net.Dial("tcp", req.Host)
	if err != nil {
		_, _ = io.WriteString(c, "HTTP/1.1 502 Bad Gateway\r\n\r\n")
		return
	}
	defer dst.Close()

	if _, err := io.WriteString(c, "HTTP/1.1 200 Connection Established\r\n\r\n"); err != nil {
		return
	}

	relay(c, dst)
}

func writeReply(c net.Conn, rep byte) {
	_, _ = socks5.NewReply(rep, socks5.ATYPIPv4, []byte{0x00, 0x00, 0x00, 0x00}, []byte{0x00, 0x00}).WriteTo(c)
}

func relay(c, dst net.Conn) {
	go func() {
		_, _ = io.Copy(dst, c)
		_ = dst.Close()
	}()
	_, _ = io.Copy(c, dst)
}
