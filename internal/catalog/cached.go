package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 15 * time.Second

// CachedProvider keeps the last catalog for ttl. Concurrent refreshes are
// collapsed into one upstream fetch, and a failed refresh keeps serving the
// previous catalog. The shared fetch is detached from the caller that
// started it, so one client going away does not fail the others.
type CachedProvider struct {
	next         Provider
	ttl          time.Duration
	fetchTimeout time.Duration
	log          logrus.FieldLogger
	now          func() time.Time
	sfg          singleflight.Group

	mu        sync.RWMutex
	catalog   *domain.Catalog
	fetchedAt time.Time
}

func NewCachedProvider(next Provider, ttl time.Duration, log logrus.FieldLogger) *CachedProvider {
	return &CachedProvider{
		next:         next,
		ttl:          ttl,
		fetchTimeout: defaultFetchTimeout,
		log:          log,
		now:          time.Now,
	}
}

func (p *CachedProvider) FetchCatalog(ctx context.Context) (*domain.Catalog, error) {
	if c, ok := p.fresh(); ok {
		return c, nil
	}

	v, err, _ := p.sfg.Do("catalog", func() (interface{}, error) {
		if c, ok := p.fresh(); ok {
			return c, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.fetchTimeout)
		defer cancel()

		c, err := p.next.FetchCatalog(fetchCtx)
		if err != nil {
			p.mu.RLock()
			stale := p.catalog
			p.mu.RUnlock()
			if stale != nil {
				p.log.WithError(err).Warn("catalog refresh failed, serving stale catalog")
				return stale, nil
			}
			return nil, err
		}

		p.mu.Lock()
		p.catalog = c
		p.fetchedAt = p.now()
		p.mu.Unlock()

		p.log.WithFields(logrus.Fields{
			"source":   c.Source,
			"products": len(c.Products),
		}).Info("catalog refreshed")
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Catalog), nil
}

// Invalidate forces the next call to refresh.
func (p *CachedProvider) Invalidate() {
	p.mu.Lock()
	p.fetchedAt = time.Time{}
	p.mu.Unlock()
}

func (p *CachedProvider) fresh() (*domain.Catalog, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.catalog == nil || p.now().Sub(p.fetchedAt) >= p.ttl {
		return nil, false
	}
	return p.catalog, true
}
