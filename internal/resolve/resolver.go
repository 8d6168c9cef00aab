// Package resolve caches DNS resolutions of proxy hostnames
// process-wide and distributes repeated connections to the same host
// across its A records round-robin.
package resolve

import (
	"context"
	"fmt"
	"net"
	"net/netip"
)

// LookupFunc resolves a domain name to zero or more addresses.
type LookupFunc func(ctx context.Context, domain string) ([]netip.Addr, error)

// Resolver resolves domain names through a shared Cache. The cache lock
// is never held across a lookup: a miss releases it for the duration of
// the network round trip and re-checks for a concurrent insert after
// reacquiring, so racing resolutions of one domain may duplicate the
// lookup but never the stored record.
type Resolver struct {
	cache  *Cache
	lookup LookupFunc
}

// New returns a Resolver with its own cache. A nil lookup uses the
// system resolver.
func New(capacity int, lookup LookupFunc) *Resolver {
	if lookup == nil {
		lookup = systemLookup
	}
	return &Resolver{
		cache:  NewCache(capacity),
		lookup: lookup,
	}
}

var defaultResolver = New(DefaultCapacity, nil)

// Default returns the process-wide resolver shared by all connection
// attempts.
func Default() *Resolver {
	return defaultResolver
}

// Resolve returns the next address for domain, consulting the cache
// first and performing a lookup only on a miss. An empty lookup result
// is cached and reported as ErrNoRecords.
func (r *Resolver) Resolve(ctx context.Context, domain string) (netip.Addr, error) {
	if addr, found, err := r.cache.Lookup(domain); found {
		return addr, err
	}

	// Lock released here: the lookup is a network round trip and must
	// not serialize unrelated resolutions.
	addrs, err := r.lookup(ctx, domain)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("lookup %s: %w", domain, err)
	}

	return r.cache.Commit(domain, addrs)
}

func systemLookup(ctx context.Context, domain string) ([]netip.Addr, error) {
	return net.DefaultResolver.LookupNetIP(ctx, "ip", domain)
}
