// Package lists serves the two client dropdown lists (expense purposes and
// accounts) through a read-through cache in front of the spreadsheet.
package lists

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ledgergate/ledgergate/internal/kvstore"
	"github.com/ledgergate/ledgergate/internal/sheets"
)

const (
	// CacheKey is the single fixed key the payload lives under.
	CacheKey = "ledgergate:lists:v1"

	// DefaultTTL keeps list reads off the spreadsheet for a day; edits show
	// up after /flush-cache or natural expiry.
	DefaultTTL = 24 * time.Hour
)

// Payload is the cached, already-filtered list data returned to clients.
type Payload struct {
	Purposes []string `json:"purposes"`
	Accounts []string `json:"accounts"`
}

// RangeReader is the slice of the spreadsheet gateway the cache needs.
type RangeReader interface {
	BatchGet(ctx context.Context, ranges ...string) ([][]string, error)
}

type Cache struct {
	store  kvstore.Store
	reader RangeReader
	log    *slog.Logger

	purposeRange string
	accountRange string
	ttl          time.Duration
}

func NewCache(store kvstore.Store, reader RangeReader, purposeRange, accountRange string, ttl time.Duration, log *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		store:        store,
		reader:       reader,
		log:          log,
		purposeRange: purposeRange,
		accountRange: accountRange,
		ttl:          ttl,
	}
}

// Get returns the cached payload when present, otherwise recomputes it from
// the spreadsheet. The cache write happens in the background; the caller
// never waits on it and a write failure is logged and dropped. A spreadsheet
// failure degrades to empty lists so the client UI stays usable; credential
// and token problems still surface as errors.
func (c *Cache) Get(ctx context.Context) (Payload, error) {
	if b, ok, err := c.store.Get(ctx, CacheKey); err != nil {
		// cache trouble is never fatal for a read
		c.log.Warn("list cache read failed", "err", err)
	} else if ok {
		var p Payload
		if err := json.Unmarshal(b, &p); err == nil {
			return p, nil
		}
		c.log.Warn("list cache entry corrupt, recomputing")
	}

	cols, err := c.reader.BatchGet(ctx, c.purposeRange, c.accountRange)
	if err != nil {
		var ge *sheets.GatewayError
		if errors.As(err, &ge) {
			c.log.Warn("list fetch degraded to empty lists", "status", ge.Status)
			return Payload{Purposes: []string{}, Accounts: []string{}}, nil
		}
		return Payload{}, err
	}

	p := Payload{
		Purposes: dropBlank(cols[0]),
		Accounts: dropBlank(cols[1]),
	}

	c.writeBehind(ctx, p)
	return p, nil
}

// Flush drops the cached payload. Flushing an absent key is not an error.
func (c *Cache) Flush(ctx context.Context) error {
	return c.store.Delete(ctx, CacheKey)
}

// writeBehind stores the payload without blocking the caller. The request
// context is detached so the write survives the response being sent.
func (c *Cache) writeBehind(ctx context.Context, p Payload) {
	b, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("list cache encode failed", "err", err)
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := c.store.Put(bg, CacheKey, b, c.ttl); err != nil {
			c.log.Warn("list cache write failed", "err", err)
		}
	}()
}

// dropBlank removes empty and whitespace-only cells, keeping source order.
func dropBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
