package uptime

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultTimezone is used for sites without a timezone assignment.
const DefaultTimezone = "America/Chicago"

// TimezoneLookup returns the IANA timezone assigned to a site, if any.
type TimezoneLookup interface {
	Timezone(ctx context.Context, siteID string) (name string, found bool, err error)
}

// TimezoneResolver maps sites to locations, falling back to a fixed default.
type TimezoneResolver struct {
	lookup   TimezoneLookup
	fallback *time.Location

	mu        sync.RWMutex
	locations map[string]*time.Location
}

// NewTimezoneResolver creates a resolver. A nil fallback means DefaultTimezone.
func NewTimezoneResolver(lookup TimezoneLookup, fallback *time.Location) *TimezoneResolver {
	if fallback == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			// tzdata missing on the host; UTC is the only safe choice left.
			loc = time.UTC
		}
		fallback = loc
	}
	return &TimezoneResolver{
		lookup:    lookup,
		fallback:  fallback,
		locations: make(map[string]*time.Location),
	}
}

// Fallback returns the default location.
func (r *TimezoneResolver) Fallback() *time.Location {
	return r.fallback
}

// Resolve returns the site's location. A missing assignment or an unknown
// timezone name resolves to the fallback; only lookup failures are errors.
func (r *TimezoneResolver) Resolve(ctx context.Context, siteID string) (*time.Location, error) {
	if r.lookup == nil {
		return r.fallback, nil
	}
	name, found, err := r.lookup.Timezone(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !found || name == "" {
		return r.fallback, nil
	}
	return r.load(siteID, name), nil
}

func (r *TimezoneResolver) load(siteID, name string) *time.Location {
	r.mu.RLock()
	loc, ok := r.locations[name]
	r.mu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Warning: site %s has unknown timezone %q, using %s", siteID, name, r.fallback)
		loc = r.fallback
	}

	r.mu.Lock()
	r.locations[name] = loc
	r.mu.Unlock()
	return loc
}
