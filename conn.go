package proxied

import "net"

// Conn is a live tunnel to a target, produced by (*Proxy).Connect. It
// erases which protocol built it: reads, writes, deadlines, and Close
// forward straight to the upgraded proxy connection with no buffering
// or transformation.
type Conn struct {
	net.Conn

	kind   Kind
	target NetworkTarget
}

// ProxyKind returns the protocol that negotiated this tunnel.
func (c *Conn) ProxyKind() Kind { return c.kind }

// Target returns the destination the tunnel was opened to.
func (c *Conn) Target() NetworkTarget { return c.target }
