package geocode

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/meghashyamc/roomradar/geo"
	"github.com/mmcloughlin/geohash"
)

var (
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrLocationDenied      = errors.New("location permission denied")
	ErrLocationTimeout     = errors.New("location request timed out")
)

const (
	DefaultLocationTimeout = 10 * time.Second
	DefaultLocationMaxAge  = 5 * time.Minute
)

// DeviceReport is the location information a client attaches to a request.
// Client identifies the caller the report came from (its address) and scopes
// the device id, so one caller cannot read another caller's cached fix.
type DeviceReport struct {
	DeviceID   string
	Client     string
	Coordinate *geo.Coordinate
	Geohash    string
	Denied     bool
}

// HasFix reports whether the report carries a location of its own.
func (r DeviceReport) HasFix() bool {
	return r.Coordinate != nil || IsGeohash(r.Geohash)
}

func (r DeviceReport) cacheKey() string {
	if r.DeviceID == "" {
		return ""
	}
	return r.Client + "|" + r.DeviceID
}

type deviceReportKey struct{}

func WithDeviceReport(ctx context.Context, report DeviceReport) context.Context {
	return context.WithValue(ctx, deviceReportKey{}, report)
}

func DeviceReportFromContext(ctx context.Context) (DeviceReport, bool) {
	report, ok := ctx.Value(deviceReportKey{}).(DeviceReport)
	return report, ok
}

// ReportedLocator answers with the fix carried by the request context.
type ReportedLocator struct{}

func (ReportedLocator) CurrentLocation(ctx context.Context) (geo.Coordinate, error) {
	report, ok := DeviceReportFromContext(ctx)
	if !ok {
		return geo.Coordinate{}, ErrLocationUnavailable
	}
	if report.Denied {
		return geo.Coordinate{}, ErrLocationDenied
	}
	if report.Coordinate != nil {
		return *report.Coordinate, nil
	}
	if IsGeohash(report.Geohash) {
		lat, lon := geohash.Decode(report.Geohash)
		return geo.Coordinate{Latitude: lat, Longitude: lon}, nil
	}
	return geo.Coordinate{}, ErrLocationUnavailable
}

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// IsGeohash reports whether value is a non-empty base32 geohash of at most
// 12 characters.
func IsGeohash(value string) bool {
	if len(value) == 0 || len(value) > 12 {
		return false
	}
	for _, char := range value {
		if !strings.ContainsRune(geohashAlphabet, char) {
			return false
		}
	}
	return true
}

type Locator interface {
	CurrentLocation(ctx context.Context) (geo.Coordinate, error)
}

type fix struct {
	coordinate geo.Coordinate
	takenAt    time.Time
}

// CachedLocator bounds every lookup on the wrapped locator by a timeout and
// reuses a per-device fix while it is younger than maxAge. A denial always
// fails and forgets the device's fix. A report carrying its own fix always
// takes a fresh lookup. Only reports with no fix fall back to the cache.
// Lookups without a device id are never cached.
type CachedLocator struct {
	next    Locator
	timeout time.Duration
	maxAge  time.Duration
	now     func() time.Time

	mu    sync.Mutex
	fixes map[string]fix
}

func NewCachedLocator(next Locator, timeout time.Duration, maxAge time.Duration) *CachedLocator {
	if timeout <= 0 {
		timeout = DefaultLocationTimeout
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return &CachedLocator{
		next:    next,
		timeout: timeout,
		maxAge:  maxAge,
		now:     time.Now,
		fixes:   make(map[string]fix),
	}
}

func (c *CachedLocator) CurrentLocation(ctx context.Context) (geo.Coordinate, error) {
	report, _ := DeviceReportFromContext(ctx)
	key := report.cacheKey()

	if report.Denied {
		c.forget(key)
		return geo.Coordinate{}, ErrLocationDenied
	}

	if !report.HasFix() {
		if coordinate, ok := c.cached(key); ok {
			return coordinate, nil
		}
	}

	coordinate, err := c.lookup(ctx)
	if err != nil {
		return geo.Coordinate{}, err
	}

	if key != "" {
		c.mu.Lock()
		c.fixes[key] = fix{coordinate: coordinate, takenAt: c.now()}
		c.mu.Unlock()
	}
	return coordinate, nil
}

func (c *CachedLocator) cached(key string) (geo.Coordinate, bool) {
	if key == "" || c.maxAge == 0 {
		return geo.Coordinate{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cachedFix, ok := c.fixes[key]
	if !ok {
		return geo.Coordinate{}, false
	}
	if c.now().Sub(cachedFix.takenAt) > c.maxAge {
		delete(c.fixes, key)
		return geo.Coordinate{}, false
	}
	return cachedFix.coordinate, true
}

func (c *CachedLocator) forget(key string) {
	if key == "" {
		return
	}
	c.mu.Lock()
	delete(c.fixes, key)
	c.mu.Unlock()
}

type lookupResult struct {
	coordinate geo.Coordinate
	err        error
}

func (c *CachedLocator) lookup(ctx context.Context) (geo.Coordinate, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resultC := make(chan lookupResult, 1)
	go func() {
		coordinate, err := c.next.CurrentLocation(timeoutCtx)
		resultC <- lookupResult{coordinate: coordinate, err: err}
	}()

	select {
	case result := <-resultC:
		if errors.Is(result.err, context.DeadlineExceeded) {
			return geo.Coordinate{}, ErrLocationTimeout
		}
		return result.coordinate, result.err
	case <-timeoutCtx.Done():
		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return geo.Coordinate{}, ErrLocationTimeout
		}
		return geo.Coordinate{}, timeoutCtx.Err()
	}
}
