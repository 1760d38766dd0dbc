package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/coursehub/internal/apperr"
	"github.com/geocoder89/coursehub/internal/cache"
	"github.com/geocoder89/coursehub/internal/http/middlewares"
	"github.com/geocoder89/coursehub/internal/query"
	"github.com/geocoder89/coursehub/internal/resource"
	"github.com/gin-gonic/gin"
)

// One interface per capability so a resource can expose only some of them.

type Creator[T any] interface {
	Create(ctx context.Context, rec T) (T, error)
}

type Lister[T any] interface {
	List(ctx context.Context, opts query.Options) ([]T, error)
}

type Getter[T any] interface {
	GetByID(ctx context.Context, id string) (T, error)
}

type Updater[T any] interface {
	Getter[T]
	Update(ctx context.Context, rec T) (T, error)
}

type Deleter interface {
	Delete(ctx context.Context, id string) error
}

const notFoundMessage = "No document found with that ID"

type FactoryConfig struct {
	// Lists caches GetAll pages; nil disables caching.
	Lists   *cache.Lists
	Timeout time.Duration
}

// Factory builds the CRUD handlers of one resource from its schema.
type Factory[T any, PT resource.Document[T]] struct {
	schema  resource.Schema[T]
	lists   *cache.Lists
	timeout time.Duration
}

func NewFactory[T any, PT resource.Document[T]](schema resource.Schema[T], cfg FactoryConfig) *Factory[T, PT] {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Factory[T, PT]{schema: schema, lists: cfg.Lists, timeout: timeout}
}

func (f *Factory[T, PT]) CreateOne(store Creator[T]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var rec T
		if err := decodeJSON(ctx, &rec); err != nil {
			middlewares.Abort(ctx, err)
			return
		}

		// clients never pick ids or timestamps
		*PT(&rec).Base() = resource.Meta{}

		if err := f.schema.Prepare(&rec); err != nil {
			middlewares.Abort(ctx, err)
			return
		}

		cctx, cancel := f.withTimeout(ctx)
		defer cancel()

		created, err := store.Create(cctx, rec)
		if err != nil {
			middlewares.Abort(ctx, err)
			return
		}

		f.lists.Invalidate(cctx, f.schema.Name)
		respondData(ctx, http.StatusCreated, created)
	}
}

func (f *Factory[T, PT]) GetAll(store Lister[T]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		opts := query.Parse(ctx.Request.URL.Query(), f.schema.Query)

		cctx, cancel := f.withTimeout(ctx)
		defer cancel()

		page := f.lists.Lookup(cctx, f.schema.Name, opts.CacheKey())
		if page.Hit {
			ctx.Header("X-Cache", "HIT")
			writeJSONWithETag(ctx, http.StatusOK, page.Body)
			return
		}

		records, err := store.List(cctx, opts)
		if err != nil {
			middlewares.Abort(ctx, err)
			return
		}

		data, err := query.Project(records, opts.Fields)
		if err != nil {
			middlewares.Abort(ctx, apperr.Internal(err))
			return
		}

		body, err := json.Marshal(listBody(len(records), data))
		if err != nil {
			middlewares.Abort(ctx, apperr.Internal(err))
			return
		}

		f.lists.Store(cctx, f.schema.Name, page, body)
		writeJSONWithETag(ctx, http.StatusOK, body)
	}
}

func (f *Factory[T, PT]) GetOne(store Getter[T]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cctx, cancel := f.withTimeout(ctx)
		defer cancel()

		rec, err := store.GetByID(cctx, ctx.Param("id"))
		if err != nil {
			middlewares.Abort(ctx, notFound(err))
			return
		}

		respondData(ctx, http.StatusOK, rec)
	}
}

// UpdateOne merges the body onto the stored record, so absent fields keep
// their value, then re-validates the whole record.
func (f *Factory[T, PT]) UpdateOne(store Updater[T]) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cctx, cancel := f.withTimeout(ctx)
		defer cancel()

		rec, err := store.GetByID(cctx, ctx.Param("id"))
		if err != nil {
			middlewares.Abort(ctx, notFound(err))
			return
		}

		meta := *PT(&rec).Base()

		if err := decodeJSON(ctx, &rec); err != nil {
			middlewares.Abort(ctx, err)
			return
		}

		*PT(&rec).Base() = meta

		if err := f.schema.Prepare(&rec); err != nil {
			middlewares.Abort(ctx, err)
			return
		}

		updated, err := store.Update(cctx, rec)
		if err != nil {
			middlewares.Abort(ctx, notFound(err))
			return
		}

		f.lists.Invalidate(cctx, f.schema.Name)
		respondData(ctx, http.StatusOK, updated)
	}
}

func (f *Factory[T, PT]) DeleteOne(store Deleter) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cctx, cancel := f.withTimeout(ctx)
		defer cancel()

		if err := store.Delete(cctx, ctx.Param("id")); err != nil {
			middlewares.Abort(ctx, notFound(err))
			return
		}

		f.lists.Invalidate(cctx, f.schema.Name)
		respondNoContent(ctx)
	}
}

func (f *Factory[T, PT]) withTimeout(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), f.timeout)
}

func notFound(err error) error {
	if errors.Is(err, resource.ErrNotFound) {
		return apperr.NotFound(notFoundMessage)
	}
	return err
}
