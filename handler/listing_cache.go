package handler

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"estatedesk/model"
)

const allListingsKey = "listings:all"

// ListingCache holds the last full listings collection. Any write drops it.
// A nil *ListingCache is valid and caches nothing.
//
// Readers take a generation before querying and hand it back to Set, so a
// collection read before a write is never stored after that write.
type ListingCache struct {
	items *ttlcache.Cache[string, []model.Listing]

	mu  sync.Mutex
	gen uint64
}

func NewListingCache(ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		return nil
	}
	return &ListingCache{
		items: ttlcache.New[string, []model.Listing](
			ttlcache.WithTTL[string, []model.Listing](ttl),
			ttlcache.WithDisableTouchOnHit[string, []model.Listing](),
		),
	}
}

func (lc *ListingCache) Get() ([]model.Listing, bool) {
	if lc == nil {
		return nil, false
	}
	item := lc.items.Get(allListingsKey)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (lc *ListingCache) Generation() uint64 {
	if lc == nil {
		return 0
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.gen
}

// Set stores listings unless the cache was invalidated since gen was taken.
func (lc *ListingCache) Set(gen uint64, listings []model.Listing) bool {
	if lc == nil {
		return false
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if gen != lc.gen {
		return false
	}
	lc.items.Set(allListingsKey, listings, ttlcache.DefaultTTL)
	return true
}

func (lc *ListingCache) Invalidate() {
	if lc == nil {
		return
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.gen++
	lc.items.Delete(allListingsKey)
}
