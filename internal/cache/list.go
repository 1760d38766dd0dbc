package cache

import (
	"context"
	"log/slog"
)

// Observer records lookup outcomes; *observability.Prom satisfies it.
type Observer interface {
	ObserveCache(resource, result string)
}

// Lists caches encoded list responses per resource. Cache failures are
// logged and treated as misses; they never fail the request.
type Lists struct {
	c   Cache
	obs Observer
	log *slog.Logger
}

func NewLists(c Cache, obs Observer, log *slog.Logger) *Lists {
	if log == nil {
		log = slog.Default()
	}
	return &Lists{c: c, obs: obs, log: log}
}

// Page is the result of one Lookup. Its key carries the generation read
// at lookup time, so a page built from a read that raced a write is stored
// under the old generation and never served.
type Page struct {
	Body []byte
	Hit  bool
	key  string
}

func (l *Lists) Lookup(ctx context.Context, resource, query string) Page {
	if l == nil || l.c == nil {
		return Page{}
	}

	key, err := l.key(ctx, resource, query)
	if err == nil {
		var (
			b  []byte
			ok bool
		)
		b, ok, err = l.c.Get(ctx, key)
		if err == nil {
			l.observe(resource, hitOrMiss(ok))
			return Page{Body: b, Hit: ok, key: key}
		}
	}

	l.log.WarnContext(ctx, "list cache lookup failed", "resource", resource, "err", err)
	l.observe(resource, "error")
	return Page{}
}

// Store saves b under the key p was looked up with. A page whose lookup
// failed is not stored.
func (l *Lists) Store(ctx context.Context, resource string, p Page, b []byte) {
	if l == nil || l.c == nil || p.key == "" {
		return
	}

	if err := l.c.Set(ctx, p.key, b); err != nil {
		l.log.WarnContext(ctx, "list cache store failed", "resource", resource, "err", err)
	}
}

// Invalidate drops every cached list page of resource.
func (l *Lists) Invalidate(ctx context.Context, resource string) {
	if l == nil || l.c == nil {
		return
	}

	if _, err := l.c.Incr(ctx, genKey(resource)); err != nil {
		l.log.WarnContext(ctx, "list cache invalidate failed", "resource", resource, "err", err)
	}
}

func (l *Lists) key(ctx context.Context, resource, query string) (string, error) {
	gen, err := l.c.Counter(ctx, genKey(resource))
	if err != nil {
		return "", err
	}
	return listKey(resource, gen, query), nil
}

func (l *Lists) observe(resource, result string) {
	if l.obs != nil {
		l.obs.ObserveCache(resource, result)
	}
}

func hitOrMiss(ok bool) string {
	if ok {
		return "hit"
	}
	return "miss"
}
