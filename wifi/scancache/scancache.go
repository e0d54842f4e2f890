// Package scancache keeps scan results around for a while after the radio
// stops reporting them, so a single missed beacon does not make a network
// flicker out of the list.
package scancache

import (
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shazow/wifilist/wifi"
)

type entry struct {
	result     wifi.ScanResult
	generation uint64
	index      int
}

// Cache ages scan results. The zero value is not usable; use New.
type Cache struct {
	store      *cache.Cache
	maxAge     time.Duration
	generation uint64
}

// New creates a cache that keeps results for maxAge after they were last
// seen. A maxAge of zero disables caching: Merge returns its input.
func New(maxAge time.Duration) *Cache {
	c := &Cache{maxAge: maxAge}
	if maxAge > 0 {
		c.store = cache.New(maxAge, 2*maxAge)
	}
	return c
}

func key(r wifi.ScanResult) string {
	if r.BSSID != "" {
		return r.BSSID
	}
	return r.SSID + "|" + r.Capabilities
}

// Merge records a fresh scan and returns every result that has not expired
// yet. Results from newer scans come first and keep their scan order, so the
// first record for a network is the most recent one.
func (c *Cache) Merge(results []wifi.ScanResult) []wifi.ScanResult {
	if c.store == nil {
		return results
	}
	c.generation++
	for i, r := range results {
		c.store.Set(key(r), entry{result: r, generation: c.generation, index: i}, cache.DefaultExpiration)
	}

	items := c.store.Items()
	entries := make([]entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, item.Object.(entry))
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].generation != entries[j].generation {
			return entries[i].generation > entries[j].generation
		}
		return entries[i].index < entries[j].index
	})

	out := make([]wifi.ScanResult, len(entries))
	for i, e := range entries {
		out[i] = e.result
	}
	return out
}

// Len returns the number of cached results, including expired ones that have
// not been cleaned up yet.
func (c *Cache) Len() int {
	if c.store == nil {
		return 0
	}
	return c.store.ItemCount()
}

// Flush drops every cached result.
func (c *Cache) Flush() {
	if c.store != nil {
		c.store.Flush()
	}
}
