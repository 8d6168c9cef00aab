package resolve

import (
	"errors"
	"net/netip"
	"sync"
)

// ErrNoRecords is returned when a domain lookup produced no addresses,
// either at lookup time or when selecting from a cached empty record.
var ErrNoRecords = errors.New("no dns records for domain")

// DefaultCapacity is the low-water mark of the process-wide cache.
// Eviction triggers once the cache grows past 1.5x this value and trims
// back down to it.
const DefaultCapacity = 1000

type record struct {
	addrs []netip.Addr
	// next index to hand out; normalized into range at selection time
	cursor int
}

// Cache maps domain names to resolved address lists with a round-robin
// cursor, bounded by a coarse high/low-water eviction pass. All access
// goes through one mutex; the critical sections contain no I/O.
type Cache struct {
	mu       sync.Mutex
	capacity int
	records  map[string]*record
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		records:  make(map[string]*record),
	}
}

// Lookup runs the eviction pass and, if domain is cached, selects its
// next address. found reports whether an entry existed; a found entry
// with no addresses yields ErrNoRecords.
func (c *Cache) Lookup(domain string) (addr netip.Addr, found bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictLocked()

	rec, ok := c.records[domain]
	if !ok {
		return netip.Addr{}, false, nil
	}
	addr, err = rec.next()
	return addr, true, err
}

// Commit inserts the resolved addresses for domain unless a concurrent
// caller already did, then selects the next address from whichever
// record is present. Keeping an existing record preserves round-robin
// progress made while this caller's lookup was in flight.
func (c *Cache) Commit(domain string, addrs []netip.Addr) (netip.Addr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[domain]
	if !ok {
		rec = &record{addrs: addrs}
		c.records[domain] = rec
	}
	return rec.next()
}

// Len returns the current number of cached domains.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// evictLocked trims the map back to capacity once it exceeds the
// high-water mark. Eviction order is whatever map iteration yields;
// this is a safety valve against unbounded growth, not an LRU.
func (c *Cache) evictLocked() {
	if len(c.records) <= c.capacity+c.capacity/2 {
		return
	}
	for domain := range c.records {
		if len(c.records) <= c.capacity {
			break
		}
		delete(c.records, domain)
	}
}

func (r *record) next() (netip.Addr, error) {
	if len(r.addrs) == 0 {
		return netip.Addr{}, ErrNoRecords
	}
	i := r.cursor % len(r.addrs)
	r.cursor = i + 1
	return r.addrs[i], nil
}
